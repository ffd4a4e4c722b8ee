package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/api"
	"github.com/tendant/simple-cms/pkg/simplecms/config"
)

func NewProjectCommand() *cobra.Command {
	var view string

	cmd := &cobra.Command{
		Use:   "project <entity.json>",
		Short: "Project an entity into a view model",
		Long:  `Create the entity described by the file and print its display, basic or dto projection.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildComponents(cmd)
			if err != nil {
				return err
			}

			entity, err := createFromFile(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}

			var out interface{}
			switch view {
			case "display":
				out, err = c.Projector.ProjectDisplay(entity)
			case "basic":
				out = c.Projector.ProjectBasic(entity)
			case "dto":
				out, err = c.Projector.ProjectDto(entity)
			default:
				return fmt.Errorf("unknown view %q (want display, basic or dto)", view)
			}
			if err != nil {
				return fmt.Errorf("projection failed: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&view, "view", "display", "projection to print: display, basic or dto")
	return cmd
}

func NewEnrichCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich <media.json>",
		Short: "Create a media item and print its enriched properties",
		Long: `Create the media item described by the file. Upload properties
configured for auto-fill get their crops and file metadata filled in.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildComponents(cmd)
			if err != nil {
				return err
			}

			media, err := createFromFile(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}
			if media.Kind != simplecms.KindMedia {
				return fmt.Errorf("content type %q is not a media type", media.ContentType.Alias)
			}
			return writeJSON(cmd.OutOrStdout(), c.Projector.ProjectBasic(media))
		},
	}
	return cmd
}

func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that the settings file wires up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := readGlobalFlags(cmd)
			if err != nil {
				return err
			}
			s, err := config.LoadSettings(flags.settings)
			if err != nil {
				return err
			}
			if _, err := buildComponents(cmd); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Settings OK: %d data types, %d content types, %d users, %d auto-fill properties\n",
				len(s.DataTypes), len(s.ContentTypes), len(s.Users), len(s.AutoFillProperties))
			return nil
		},
	}
	return cmd
}

// createFromFile creates the content or media item described by a JSON file,
// choosing the lifecycle from the content type's kind.
func createFromFile(ctx context.Context, c *config.Components, path string) (*simplecms.ContentEntity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var req api.CreateContentRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	createReq := simplecms.CreateContentRequest{
		ContentTypeAlias: req.ContentTypeAlias,
		Name:             req.Name,
		Values:           req.Values,
	}
	if req.CreatorID != "" {
		if createReq.CreatorID, err = uuid.Parse(req.CreatorID); err != nil {
			return nil, fmt.Errorf("invalid creator_id: %w", err)
		}
	}
	if req.ParentID != "" {
		if createReq.ParentID, err = uuid.Parse(req.ParentID); err != nil {
			return nil, fmt.Errorf("invalid parent_id: %w", err)
		}
	}

	ct, err := c.Service.GetContentType(ctx, req.ContentTypeAlias)
	if err != nil {
		return nil, err
	}
	if ct.Kind == simplecms.KindMedia {
		return c.Service.CreateMedia(ctx, createReq)
	}
	return c.Service.CreateContent(ctx, createReq)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
