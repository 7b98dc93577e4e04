package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"soundstage/internal/config"
	"soundstage/internal/envtmpl"
)

func newTemplateCommand(ctx *commandContext) *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "template [file...]",
		Short: "Fill $NAME placeholders in built files from an env file",
		Long: "Fill $NAME placeholders in built files from an env file.\n\n" +
			"Files default to deploy.template_files and the env file to deploy.env_file.\n" +
			"Placeholders with no matching variable are left as they are.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(false)
			if err != nil {
				return err
			}

			envPath := cfg.Deploy.EnvFile
			if cmd.Flags().Changed("env") {
				if envPath, err = config.ExpandPath(envFile); err != nil {
					return fmt.Errorf("resolve env file: %w", err)
				}
			}
			files := cfg.Deploy.TemplateFiles
			if len(args) > 0 {
				files = make([]string, 0, len(args))
				for _, arg := range args {
					path, err := config.ExpandPath(arg)
					if err != nil {
						return fmt.Errorf("resolve %s: %w", arg, err)
					}
					files = append(files, path)
				}
			}
			if len(files) == 0 {
				return errors.New("no files to template (pass paths or set deploy.template_files)")
			}

			env, err := envtmpl.LoadEnv(envPath)
			if err != nil {
				return err
			}
			results, err := envtmpl.Apply(env, files, logger)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(results))
			total := 0
			for _, r := range results {
				rows = append(rows, []string{r.Path, strconv.Itoa(r.Replacements)})
				total += r.Replacements
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable("", []string{"File", "Replacements"}, rows, []columnAlignment{alignLeft, alignRight}))
			fmt.Fprintf(out, "%d placeholders filled from %d variables in %s\n", total, env.Len(), envPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env", "", "Override deploy.env_file")
	return cmd
}
