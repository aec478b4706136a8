package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aiverify/aivctl/cmd/aivctl/internal/configwizard"
	"github.com/aiverify/aivctl/cmd/aivctl/internal/styles"
	"github.com/aiverify/aivctl/pkg/guide"
	"github.com/aiverify/aivctl/pkg/modelapi"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errInvalidRecord is returned after validation problems were printed.
var errInvalidRecord = errors.New("model API record is invalid")

var (
	newName        string
	newDescription string
	newModelType   string
	newPreset      string
	newForce       bool
	newEdit        bool

	editPreset string

	validateWatch bool

	probeSet []string

	pushID string

	presetsSteps bool
)

var modelapiCmd = &cobra.Command{
	Use:     "modelapi",
	Aliases: []string{"model-api", "api"},
	Short:   "Create, edit and check model API records",
}

var modelapiNewCmd = &cobra.Command{
	Use:   "new [file]",
	Short: "Create a model API record from a preset",
	Long: `Creates a model API record. Without --name the command asks for the name,
description, model type and preset interactively. The preset fixes the method,
authentication and parameter placement; --edit then opens the guided editor
with the preset's steps.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runModelAPINew,
}

var modelapiEditCmd = &cobra.Command{
	Use:   "edit <file>",
	Short: "Edit a model API record in the guided editor",
	Long: `Opens the full-screen editor. Ctrl+G opens the preset panel; choosing a
preset locks the fields it dictates and lists the steps still to fill in.
Ctrl+S reviews the changes as a diff against the file on disk before saving.`,
	Args: cobra.ExactArgs(1),
	RunE: runModelAPIEdit,
}

var modelapiValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a model API record",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelAPIValidate,
}

var modelapiProbeCmd = &cobra.Command{
	Use:   "probe <file>",
	Short: "Call the model once and check the response",
	Long: `Builds the request a record describes, sends it and checks the response
status, media type and schema type. Parameter and property values come from
--set name=value.`,
	Args: cobra.ExactArgs(1),
	RunE: runModelAPIProbe,
}

var modelapiPushCmd = &cobra.Command{
	Use:   "push <file>",
	Short: "Register a model API record with the portal",
	Long: `Creates the model API on the portal, or updates it when --id is given or the
record already carries an id. A newly assigned id is written back to the file.`,
	Args: cobra.ExactArgs(1),
	RunE: runModelAPIPush,
}

var modelapiPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the available presets",
	Args:  cobra.NoArgs,
	RunE:  runModelAPIPresets,
}

func init() {
	modelapiNewCmd.Flags().StringVar(&newName, "name", "", "Record name (prompts for everything when omitted)")
	modelapiNewCmd.Flags().StringVar(&newDescription, "description", "", "Record description")
	modelapiNewCmd.Flags().StringVar(&newModelType, "model-type", modelapi.ModelClassification, "Model type")
	modelapiNewCmd.Flags().StringVar(&newPreset, "preset", "", "Preset label or number from 'modelapi presets'")
	modelapiNewCmd.Flags().BoolVar(&newForce, "force", false, "Overwrite an existing file")
	modelapiNewCmd.Flags().BoolVar(&newEdit, "edit", false, "Open the editor after creating the record")

	modelapiEditCmd.Flags().StringVar(&editPreset, "preset", "", "Start with this preset selected")

	modelapiValidateCmd.Flags().BoolVar(&validateWatch, "watch", false, "Re-validate whenever the file changes")

	modelapiProbeCmd.Flags().StringArrayVar(&probeSet, "set", nil, "Value for a parameter or property (name=value, repeatable)")

	modelapiPushCmd.Flags().StringVar(&pushID, "id", "", "Update this portal model API instead of creating one")

	modelapiPresetsCmd.Flags().BoolVar(&presetsSteps, "steps", false, "Show the guide steps of each preset")

	modelapiCmd.AddCommand(modelapiNewCmd)
	modelapiCmd.AddCommand(modelapiEditCmd)
	modelapiCmd.AddCommand(modelapiValidateCmd)
	modelapiCmd.AddCommand(modelapiProbeCmd)
	modelapiCmd.AddCommand(modelapiPushCmd)
	modelapiCmd.AddCommand(modelapiPresetsCmd)
}

// lookupPreset resolves a preset by label or 1-based number.
func lookupPreset(s string) (guide.Preset, error) {
	if n, err := strconv.Atoi(s); err == nil {
		all := guide.Presets()
		if n < 1 || n > len(all) {
			return guide.Preset{}, fmt.Errorf("preset %d out of range 1-%d", n, len(all))
		}
		return all[n-1], nil
	}
	if p, ok := guide.PresetByLabel(s); ok {
		return p, nil
	}
	return guide.Preset{}, fmt.Errorf("unknown preset %q (see 'aivctl modelapi presets')", s)
}

// newRecordAnswers holds the questionnaire results.
type newRecordAnswers struct {
	Name        string
	Description string
	ModelType   string
	Preset      string
}

// askNewRecord runs the questionnaire. Tests replace it.
var askNewRecord = func(a *newRecordAnswers) error {
	presetOpts := []huh.Option[string]{huh.NewOption("No preset", "")}
	for _, p := range guide.Presets() {
		presetOpts = append(presetOpts, huh.NewOption(p.Label, p.Label))
	}
	typeOpts := make([]huh.Option[string], len(modelapi.ModelTypes))
	for i, t := range modelapi.ModelTypes {
		typeOpts[i] = huh.NewOption(t, t)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&a.Name).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("name is required")
				}
				return nil
			}),
			huh.NewInput().Title("Description").Value(&a.Description),
			huh.NewSelect[string]().Title("Model type").Options(typeOpts...).Value(&a.ModelType),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Preset").
				Description("How the model API is called").
				Options(presetOpts...).
				Value(&a.Preset),
		),
	).Run()
}

func runModelAPINew(cmd *cobra.Command, args []string) error {
	answers := newRecordAnswers{
		Name:        newName,
		Description: newDescription,
		ModelType:   newModelType,
		Preset:      newPreset,
	}
	if answers.Name == "" {
		if err := askNewRecord(&answers); err != nil {
			return err
		}
	}

	var preset guide.Preset
	if answers.Preset != "" {
		var err error
		if preset, err = lookupPreset(answers.Preset); err != nil {
			return err
		}
	}

	cfg := modelapi.Default()
	cfg.Name = strings.TrimSpace(answers.Name)
	cfg.Description = answers.Description
	if answers.ModelType != "" {
		cfg.ModelType = answers.ModelType
	}
	cfg.ApplyPreset(preset.Items)

	path := recordPath(slugify(cfg.Name))
	if len(args) == 1 {
		path = recordPath(args[0])
	}
	if _, err := os.Stat(path); err == nil && !newForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := modelapi.Save(path, cfg); err != nil {
		return err
	}
	logger.Info("model api created", zap.String("path", path), zap.String("preset", preset.Label))
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)

	if newEdit {
		return editRecord(cmd, path, cfg, preset.Items)
	}
	return nil
}

func runModelAPIEdit(cmd *cobra.Command, args []string) error {
	path := recordPath(args[0])

	cfg, err := modelapi.LoadRaw(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = modelapi.Default()
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	} else if err != nil {
		return err
	}

	var items []guide.HelpItem
	if editPreset != "" {
		p, err := lookupPreset(editPreset)
		if err != nil {
			return err
		}
		items = p.Items
	}
	return editRecord(cmd, path, cfg, items)
}

func editRecord(cmd *cobra.Command, path string, cfg modelapi.Config, preset []guide.HelpItem) error {
	opts := []configwizard.Option{configwizard.WithLogger(logger)}
	if len(preset) > 0 {
		opts = append(opts, configwizard.WithPreset(preset))
	}

	_, saved, err := configwizard.Run(cfg, path, opts...)
	if err != nil {
		return err
	}
	if saved {
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "No changes saved")
	}
	return nil
}

func runModelAPIValidate(cmd *cobra.Command, args []string) error {
	path := recordPath(args[0])
	if validateWatch {
		return watchRecord(cmd.Context(), path, cmd.OutOrStdout())
	}
	return validateRecord(path, cmd.OutOrStdout())
}

// validateRecord loads the record at path and prints its problems.
func validateRecord(path string, w io.Writer) error {
	cfg, err := modelapi.LoadRaw(path)
	if err != nil {
		return err
	}

	err = cfg.Validate()
	var verr *modelapi.ValidationError
	switch {
	case err == nil:
		fmt.Fprintln(w, styles.SuccessStyle.Render("✓ "+path+" is valid"))
		return nil
	case errors.As(err, &verr):
		fmt.Fprintln(w, styles.ErrorStyle.Render(fmt.Sprintf("✗ %s: %d problem(s)", path, len(verr.Problems))))
		for _, p := range verr.Problems {
			fmt.Fprintf(w, "  %s %s: %s\n", styles.TreeTee, p.Field.Label(), p.Message)
		}
		return errInvalidRecord
	default:
		return err
	}
}

func runModelAPIProbe(cmd *cobra.Command, args []string) error {
	values, err := parseAssignments(probeSet)
	if err != nil {
		return err
	}

	path := recordPath(args[0])
	cfg, err := modelapi.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := &http.Client{Timeout: settings.Timeout}
	res, err := modelapi.Probe(cmd.Context(), client, cfg, values)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", cfg.ModelAPI.Method, cfg.ModelAPI.URL)
	fmt.Fprintf(out, "  status:       %d\n", res.StatusCode)
	fmt.Fprintf(out, "  content type: %s\n", res.ContentType)
	fmt.Fprintf(out, "  latency:      %s\n", res.Latency.Round(time.Millisecond))
	if body := firstLine(string(res.Body)); body != "" {
		fmt.Fprintf(out, "  body:         %s\n", truncate(body, 72))
	}

	if !res.OK() {
		for _, p := range res.Problems {
			fmt.Fprintln(out, styles.ErrorStyle.Render("  ✗ "+p))
		}
		return fmt.Errorf("probe of %s failed", cfg.Name)
	}
	fmt.Fprintln(out, styles.SuccessStyle.Render("  ✓ response matches the record"))
	return nil
}

func runModelAPIPush(cmd *cobra.Command, args []string) error {
	path := recordPath(args[0])
	cfg, err := modelapi.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := newPortalClient()
	out := cmd.OutOrStdout()

	id := pushID
	if id == "" {
		id = cfg.ID
	}
	if id != "" {
		if err := client.UpdateModelAPI(cmd.Context(), id, cfg); err != nil {
			return err
		}
		fmt.Fprintf(out, "Updated model API %s (%s)\n", cfg.Name, id)
		return nil
	}

	id, err = client.CreateModelAPI(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	// Write the id into the unexpanded record so secrets stay as references.
	raw, err := modelapi.LoadRaw(path)
	if err != nil {
		return err
	}
	raw.ID = id
	if err := modelapi.Save(path, raw); err != nil {
		return err
	}

	fmt.Fprintf(out, "Created model API %s (%s)\n", cfg.Name, id)
	return nil
}

func runModelAPIPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	interp := guide.NewInterpreter()

	for i, p := range guide.Presets() {
		tags := make([]string, len(p.Items))
		for j, h := range p.Items {
			tags[j] = strings.ToLower(string(h))
		}
		fmt.Fprintf(out, "%2d  %s  %s\n", i+1, p.Label, styles.DimStyle.Render(strings.Join(tags, " ")))

		if !presetsSteps {
			continue
		}
		steps := interp.Plan(p.Items).Steps
		for j, s := range steps {
			branch := styles.TreeTee
			if j == len(steps)-1 {
				branch = styles.TreeCorner
			}
			labels := make([]string, len(s.Fields))
			for k, f := range s.Fields {
				labels[k] = f.Field.Label()
			}
			fmt.Fprintf(out, "      %s %s: %s\n", branch, s.Name, strings.Join(labels, ", "))
		}
	}
	return nil
}
