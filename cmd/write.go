package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/propdesk/internal/domain"
	"github.com/zjrosen/propdesk/internal/log"
	"github.com/zjrosen/propdesk/internal/presentation"
)

// readPayload decodes a YAML payload file ("-" reads stdin). Unknown keys
// are rejected.
func readPayload[P any](cmd *cobra.Command, path string) (P, error) {
	var p P
	if path == "" {
		return p, errors.New("a payload file is required (-f payload.yaml)")
	}
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path) //nolint:gosec // G304: path from the command line
		if err != nil {
			return p, fmt.Errorf("opening payload: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("decoding payload %s: %w", path, err)
	}
	return p, nil
}

func projectPayload(p domain.Project) domain.ProjectPayload {
	return domain.ProjectPayload{
		BuilderID:         p.BuilderID,
		Name:              p.Name,
		Description:       p.Description,
		CityIDs:           p.CityIDs,
		ConstructionType:  p.ConstructionType,
		ProjectType:       p.ProjectType,
		Status:            p.Status,
		PossessionMonth:   p.PossessionMonth,
		PossessionYear:    p.PossessionYear,
		IsReadyPossession: p.IsReadyPossession,
		AmenityIDs:        p.AmenityIDs,
	}
}

func propertyPayload(p domain.Property) domain.PropertyPayload {
	return domain.PropertyPayload{
		Title:           p.Title,
		Description:     p.Description,
		ProjectID:       p.ProjectID,
		PropertyType:    p.PropertyType,
		PropertySubType: p.PropertySubType,
		ListingFor:      p.ListingFor,
		Furnishing:      p.Furnishing,
		BHK:             p.BHK,
		Pricing:         p.Pricing,
		LocationIDs:     p.LocationIDs,
	}
}

var (
	payloadFile      string
	contactDeveloper string
)

var createCmd = &cobra.Command{
	Use:   "create <resource>",
	Short: "Create a record from a YAML payload",
	Long: `Create a record from a YAML payload file and print the stored record.

Resources: locations, developers, projects, properties, contacts.
A contact person is added to the developer named by --developer.

Example payload for a project:
  builder_id: 1
  name: Skyline Towers
  city_id: [1, 2]
  project_type: residential
  status: ongoing
  possession_month: 3
  possession_year: 2027
  is_ready_possession: false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := commandRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		record, noun, err := create(cmd, rt, args[0])
		if err != nil {
			log.ErrorErr(log.CatRepo, "Create failed", err, "resource", args[0])
			return err
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s created successfully\n", noun)
		return presentation.NewFormatter(cmd.OutOrStdout()).YAML(record)
	},
}

func create(cmd *cobra.Command, rt *runtime, name string) (any, string, error) {
	ctx := cmd.Context()
	if name == "contact" || name == "contacts" {
		if contactDeveloper == "" {
			return nil, "", errors.New("--developer is required for contacts")
		}
		p, err := readPayload[domain.ContactPersonPayload](cmd, payloadFile)
		if err != nil {
			return nil, "", err
		}
		c, err := rt.repos.Builders.AddContactPerson(ctx, domain.ID(contactDeveloper), p)
		return c, "Contact person", err
	}

	resource, err := canonicalResource(name)
	if err != nil {
		return nil, "", err
	}
	switch resource {
	case "locations":
		p, err := readPayload[domain.LocationPayload](cmd, payloadFile)
		if err != nil {
			return nil, "", err
		}
		l, err := rt.repos.Locations.Create(ctx, p)
		return l, "Location", err
	case "developers":
		p, err := readPayload[domain.BuilderPayload](cmd, payloadFile)
		if err != nil {
			return nil, "", err
		}
		b, err := rt.repos.Builders.Create(ctx, p)
		return b, "Developer", err
	case "projects":
		p, err := readPayload[domain.ProjectPayload](cmd, payloadFile)
		if err != nil {
			return nil, "", err
		}
		pr, err := rt.repos.Projects.Create(ctx, p)
		return pr, "Project", err
	case "properties":
		p, err := readPayload[domain.PropertyPayload](cmd, payloadFile)
		if err != nil {
			return nil, "", err
		}
		pr, err := rt.repos.Properties.Create(ctx, p)
		return pr, "Property", err
	}
	return nil, "", fmt.Errorf("cannot create %s", resource)
}

var updateDiff bool

var updateCmd = &cobra.Command{
	Use:   "update <resource> <id>",
	Short: "Replace a project or property from a YAML payload",
	Long: `Replace a project or property from a YAML payload file.

With --diff nothing is sent: the stored record is rendered as a payload and
compared line by line with the file.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resource, err := canonicalResource(args[0])
		if err != nil {
			return err
		}
		rt, err := commandRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		id := domain.ID(args[1])
		out := presentation.NewFormatter(cmd.OutOrStdout())
		switch resource {
		case "projects":
			return update(cmd, out, id, "Project",
				func(ctx context.Context) (domain.ProjectPayload, error) {
					p, err := rt.repos.Projects.GetByID(ctx, id)
					return projectPayload(p), err
				},
				func(ctx context.Context, p domain.ProjectPayload) (any, error) {
					return rt.repos.Projects.Update(ctx, id, p)
				})
		case "properties":
			return update(cmd, out, id, "Property",
				func(ctx context.Context) (domain.PropertyPayload, error) {
					p, err := rt.repos.Properties.GetByID(ctx, id)
					return propertyPayload(p), err
				},
				func(ctx context.Context, p domain.PropertyPayload) (any, error) {
					return rt.repos.Properties.Update(ctx, id, p)
				})
		}
		return fmt.Errorf("cannot update %s", resource)
	},
}

func update[P any](
	cmd *cobra.Command,
	out *presentation.Formatter,
	id domain.ID,
	noun string,
	current func(context.Context) (P, error),
	apply func(context.Context, P) (any, error),
) error {
	next, err := readPayload[P](cmd, payloadFile)
	if err != nil {
		return err
	}
	if updateDiff {
		before, err := current(cmd.Context())
		if err != nil {
			return err
		}
		a, err := presentation.ToYAML(before)
		if err != nil {
			return err
		}
		b, err := presentation.ToYAML(next)
		if err != nil {
			return err
		}
		return out.Diff(a, b)
	}

	record, err := apply(cmd.Context(), next)
	if err != nil {
		log.ErrorErr(log.CatRepo, "Update failed", err, "id", id.String())
		return err
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s updated successfully\n", noun)
	return out.YAML(record)
}

var deleteCmd = &cobra.Command{
	Use:   "delete <resource> <id>",
	Short: "Delete a project or property",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resource, err := canonicalResource(args[0])
		if err != nil {
			return err
		}
		rt, err := commandRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		id := domain.ID(args[1])
		var success string
		switch resource {
		case "projects":
			success = "Project deleted successfully"
			err = rt.repos.Projects.Delete(cmd.Context(), id)
		case "properties":
			success = "Property deleted successfully"
			err = rt.repos.Properties.Delete(cmd.Context(), id)
		default:
			return fmt.Errorf("cannot delete %s", resource)
		}
		if err != nil {
			log.ErrorErr(log.CatRepo, "Delete failed", err, "resource", resource, "id", id.String())
			return fmt.Errorf("deleting %s %s: %w", resource, id, err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), success)
		return err
	},
}

func init() {
	createCmd.Flags().StringVarP(&payloadFile, "file", "f", "", "YAML payload file (- for stdin)")
	createCmd.Flags().StringVar(&contactDeveloper, "developer", "", "developer id (contacts only)")

	updateCmd.Flags().StringVarP(&payloadFile, "file", "f", "", "YAML payload file (- for stdin)")
	updateCmd.Flags().BoolVar(&updateDiff, "diff", false, "preview changes against the stored record without sending")

	rootCmd.AddCommand(createCmd, updateCmd, deleteCmd)
}
