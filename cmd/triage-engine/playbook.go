package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/miradorstack/mirador-triage/internal/api"
	"github.com/miradorstack/mirador-triage/internal/models"
	"github.com/miradorstack/mirador-triage/internal/repo"
)

var personaAliases = map[string]models.Persona{
	"chen":    models.PersonaChen,
	"okonkwo": models.PersonaOkonkwo,
}

func newPlaybookCmd(opts *rootOptions) *cobra.Command {
	var (
		file       string
		incidentID string
		persona    string
	)
	cmd := &cobra.Command{
		Use:   "playbook",
		Short: "Generate a response playbook for an incident",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := repo.LoadCatalog(file)
			if err != nil {
				return err
			}
			incident, ok := catalog.Incident(incidentID)
			if !ok {
				return fmt.Errorf("incident %s not found", incidentID)
			}
			req := incident.PlaybookRequest(resolvePersona(persona))

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			var pb models.Playbook
			if opts.remote != "" {
				c, err := newRemote(opts)
				if err != nil {
					return err
				}
				defer c.Close()
				pb, err = c.Playbook(ctx, req)
				if err != nil {
					return err
				}
			} else {
				svc, closeService, err := buildService(opts.cfg, opts.logger)
				if err != nil {
					return err
				}
				defer closeService()
				pb, err = svc.Playbook(ctx, req)
				if err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), api.ToWirePlaybook(pb))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "incident document (YAML or JSON)")
	cmd.Flags().StringVar(&incidentID, "incident", "", "incident id")
	cmd.Flags().StringVar(&persona, "persona", "chen", `expert persona: "chen", "okonkwo" or the full persona name`)
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("incident")
	return cmd
}

// resolvePersona expands a short alias; anything else is passed through for the
// generator to validate.
func resolvePersona(value string) models.Persona {
	if p, ok := personaAliases[strings.ToLower(strings.TrimSpace(value))]; ok {
		return p
	}
	return models.Persona(value)
}
