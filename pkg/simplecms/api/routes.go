package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Mount registers all resource routes on r.
func Mount(r chi.Router, service simplecms.Service, projector Projector, store simplecms.BlobStore) {
	r.Mount("/content-types", NewContentTypeHandler(service).Routes())
	r.Mount("/content", NewContentHandler(service, projector).Routes())
	r.Mount("/media", NewMediaHandler(service, projector).Routes())
	if store != nil {
		r.Mount("/files", NewFilesHandler(store).Routes())
	}
}
