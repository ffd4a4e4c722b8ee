// Package simplecms provides the content and media model of a small
// content-management system together with the save pipeline that runs
// property-editor plugins against media entities.
//
// Content entities carry a fully loaded content type (property groups and
// property types) so that they can be projected into UI-facing models by the
// mapping subpackage without further lookups against persistence. Editors and
// data types are resolved through the registry subpackage; repositories
// (memory, Postgres) and blob stores (memory, filesystem, S3) are provided
// under their own subpackages.
//
// Plugin Hooks
//
// Editors that need to react to media lifecycle events (for example the image
// cropper deriving file metadata) register MediaHooks with the Service at
// construction time. There is no process-wide subscriber list: the Service
// invokes exactly the hooks it was built with.
package simplecms
