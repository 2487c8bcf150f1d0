package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldkit/jobwalk/internal/config"
	"github.com/fieldkit/jobwalk/internal/geometry"
	"github.com/fieldkit/jobwalk/internal/session"
)

// --- sessions ---

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new inspection session",
	RunE: func(cmd *cobra.Command, args []string) error {
		address, _ := cmd.Flags().GetString("address")
		homeowner, _ := cmd.Flags().GetString("homeowner")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/sessions", map[string]string{
			"address":   address,
			"homeowner": homeowner,
		})
		if err != nil {
			return err
		}

		var rec session.Record
		if err := decodeJSON(resp, &rec); err != nil {
			return err
		}

		printSuccess("Session %s created", rec.ID)
		fmt.Println(rec.ID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List inspection sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/sessions")
		if err != nil {
			return err
		}

		var recs []session.Record
		if err := decodeJSON(resp, &recs); err != nil {
			return err
		}

		if len(recs) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		for _, rec := range recs {
			address := rec.State.Job.Address
			if address == "" {
				address = "(no address)"
			}
			fmt.Printf("%s  %s  %-14s %s\n",
				colorize(colorCyan, rec.ID[:8]),
				rec.State.Job.Date,
				rec.State.Dispo.Status,
				address,
			)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/sessions/"+args[0])
		if err != nil {
			return err
		}

		var rec any
		if err := decodeJSON(resp, &rec); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/sessions/"+args[0], nil)
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Session %s deleted", args[0])
		return nil
	},
}

func init() {
	newCmd.Flags().String("address", "", "job site address")
	newCmd.Flags().String("homeowner", "", "homeowner name")
}

// --- job ---

var jobCmd = &cobra.Command{
	Use:   "job <session-id>",
	Short: "Update job metadata on a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		// Read current job so unset flags keep their values.
		resp, err := client.get(cmd.Context(), "/sessions/"+args[0])
		if err != nil {
			return err
		}
		var rec session.Record
		if err := decodeJSON(resp, &rec); err != nil {
			return err
		}

		job := rec.State.Job
		if cmd.Flags().Changed("address") {
			job.Address, _ = cmd.Flags().GetString("address")
		}
		if cmd.Flags().Changed("homeowner") {
			job.Homeowner, _ = cmd.Flags().GetString("homeowner")
		}
		if cmd.Flags().Changed("date") {
			job.Date, _ = cmd.Flags().GetString("date")
		}
		if cmd.Flags().Changed("notes") {
			job.Notes, _ = cmd.Flags().GetString("notes")
		}

		putResp, err := client.put(cmd.Context(), "/sessions/"+args[0]+"/job", job)
		if err != nil {
			return err
		}
		if err := decodeJSON(putResp, &rec); err != nil {
			return err
		}

		printSuccess("Job updated")
		return nil
	},
}

func init() {
	jobCmd.Flags().String("address", "", "job site address")
	jobCmd.Flags().String("homeowner", "", "homeowner name")
	jobCmd.Flags().String("date", "", "visit date (YYYY-MM-DD)")
	jobCmd.Flags().String("notes", "", "job notes")
}

// --- answer ---

var answerCmd = &cobra.Command{
	Use:   "answer <session-id> [question-id] [value]",
	Short: "Record a checklist answer and show updated suggestions",
	Long: `Record a checklist answer and show updated suggestions.

Examples:
  jobwalk answer 5f2c foundation_type crawlspace
  jobwalk answer 5f2c humidity ""        (clear one answer)
  jobwalk answer 5f2c --reset            (clear all answers)`,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		reset, _ := cmd.Flags().GetBool("reset")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		var rec session.Record
		if reset {
			resp, err := client.delete(cmd.Context(), "/sessions/"+args[0]+"/answers", nil)
			if err != nil {
				return err
			}
			if err := decodeJSON(resp, &rec); err != nil {
				return err
			}
			printSuccess("Answers cleared")
		} else {
			if len(args) < 2 {
				return fmt.Errorf("question id required (or use --reset)")
			}
			value := ""
			if len(args) == 3 {
				value = args[2]
			}
			resp, err := client.post(cmd.Context(), "/sessions/"+args[0]+"/answers", map[string]string{
				"questionId": args[1],
				"value":      value,
			})
			if err != nil {
				return err
			}
			if err := decodeJSON(resp, &rec); err != nil {
				return err
			}
		}

		fmt.Printf("Tags: %s\n", strings.Join(rec.State.Tags, ", "))
		if len(rec.State.SuggestedSolutionIDs) == 0 {
			fmt.Println("Suggested: (none yet)")
		} else {
			fmt.Printf("Suggested: %s\n", strings.Join(rec.State.SuggestedSolutionIDs, ", "))
		}
		return nil
	},
}

func init() {
	answerCmd.Flags().Bool("reset", false, "clear all answers")
}

// --- perimeter ---

var perimeterCmd = &cobra.Command{
	Use:   "perimeter",
	Short: "Record or show the foundation footprint",
}

var perimeterRectCmd = &cobra.Command{
	Use:   "rect <session-id> <length> <width> [wall-height]",
	Short: "Set a rectangular footprint (feet)",
	Args:  cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		length, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid length %q", args[1])
		}
		width, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid width %q", args[2])
		}
		var height float64
		if len(args) == 4 {
			height, err = strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("invalid wall height %q", args[3])
			}
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), "/sessions/"+args[0]+"/perimeter", map[string]any{
			"mode": "rect",
			"rect": map[string]float64{"L": length, "W": width, "H": height},
		})
		if err != nil {
			return err
		}
		var rec session.Record
		if err := decodeJSON(resp, &rec); err != nil {
			return err
		}

		printSuccess("Perimeter set (rect %gx%g)", length, width)
		return nil
	},
}

var perimeterWalkCmd = &cobra.Command{
	Use:   "walk <session-id> <len:turn,len:turn,...>",
	Short: "Set a walked footprint from length:turn segments",
	Long: `Set a walked footprint from length:turn segments.

Each segment is a run in feet followed by the turn in degrees at its
end, for example a 30x20 rectangle walked clockwise:

  jobwalk perimeter walk 5f2c 30:90,20:90,30:90,20:90`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		segments, err := parseSegments(args[1])
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), "/sessions/"+args[0]+"/perimeter", map[string]any{
			"mode":     "walk",
			"segments": segments,
		})
		if err != nil {
			return err
		}
		var rec session.Record
		if err := decodeJSON(resp, &rec); err != nil {
			return err
		}

		printSuccess("Perimeter set (%d segments)", len(segments))
		return nil
	},
}

var perimeterShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the footprint measurements",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/sessions/"+args[0]+"/perimeter")
		if err != nil {
			return err
		}

		var result struct {
			Mode    string           `json:"mode"`
			Outputs geometry.Outputs `json:"outputs"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printStatus("Mode", "%s", result.Mode)
		printStatus("Perimeter", "%g ft", result.Outputs.Perimeter)
		printStatus("Area", "%g sq ft", result.Outputs.Area)
		if result.Mode == "walk" {
			printStatus("Closure error", "%g ft", result.Outputs.Closure)
		}
		return nil
	},
}

func parseSegments(s string) ([]geometry.Segment, error) {
	parts := strings.Split(s, ",")
	segments := make([]geometry.Segment, 0, len(parts))
	for _, part := range parts {
		lt := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(lt) != 2 {
			return nil, fmt.Errorf("invalid segment %q, want len:turn", part)
		}
		length, err := strconv.ParseFloat(lt[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid segment length %q", lt[0])
		}
		turn, err := strconv.ParseFloat(lt[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid segment turn %q", lt[1])
		}
		segments = append(segments, geometry.Segment{Len: length, TurnDeg: turn})
	}
	return segments, nil
}

func init() {
	perimeterCmd.AddCommand(perimeterRectCmd)
	perimeterCmd.AddCommand(perimeterWalkCmd)
	perimeterCmd.AddCommand(perimeterShowCmd)
}

// --- flight plans ---

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage per-solution flight plans",
}

var planAutofillCmd = &cobra.Command{
	Use:   "autofill <session-id>",
	Short: "Back-fill quantities and default add-ons from the footprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/sessions/"+args[0]+"/autofill", map[string]string{})
		if err != nil {
			return err
		}
		var rec session.Record
		if err := decodeJSON(resp, &rec); err != nil {
			return err
		}

		printSuccess("Quantities back-filled for %d plan(s)", len(rec.State.FlightPlans))
		return nil
	},
}

var planAddCmd = &cobra.Command{
	Use:   "add <session-id> <solution-id> <item>",
	Short: "Add a line item to a flight plan",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/sessions/"+args[0]+"/flightplans/"+args[1]+"/lines",
			map[string]string{"item": args[2]})
		if err != nil {
			return err
		}
		var rec session.Record
		if err := decodeJSON(resp, &rec); err != nil {
			return err
		}

		printSuccess("Added %q to %s", args[2], args[1])
		return nil
	},
}

var planRemoveCmd = &cobra.Command{
	Use:   "remove <session-id> <solution-id> <item>",
	Short: "Remove a line item from a flight plan",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/sessions/"+args[0]+"/flightplans/"+args[1]+"/lines",
			map[string]string{"item": args[2]})
		if err != nil {
			return err
		}
		var rec session.Record
		if err := decodeJSON(resp, &rec); err != nil {
			return err
		}

		printSuccess("Removed %q from %s", args[2], args[1])
		return nil
	},
}

var planNotesCmd = &cobra.Command{
	Use:   "notes <session-id> <solution-id> <notes>",
	Short: "Set the notes on a flight plan",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), "/sessions/"+args[0]+"/flightplans/"+args[1]+"/notes",
			map[string]string{"notes": args[2]})
		if err != nil {
			return err
		}
		var rec session.Record
		if err := decodeJSON(resp, &rec); err != nil {
			return err
		}

		printSuccess("Notes updated for %s", args[1])
		return nil
	},
}

var planAddonCmd = &cobra.Command{
	Use:   "addon <session-id> <solution-id> <addon-id>",
	Short: "Toggle an add-on package on a flight plan",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		off, _ := cmd.Flags().GetBool("off")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/sessions/"+args[0]+"/addons", map[string]any{
			"solutionId": args[1],
			"addOnId":    args[2],
			"on":         !off,
		})
		if err != nil {
			return err
		}
		var rec session.Record
		if err := decodeJSON(resp, &rec); err != nil {
			return err
		}

		if off {
			printSuccess("Add-on %s removed from %s", args[2], args[1])
		} else {
			printSuccess("Add-on %s added to %s", args[2], args[1])
		}
		return nil
	},
}

func init() {
	planAddonCmd.Flags().Bool("off", false, "remove the add-on instead of adding it")
	planCmd.AddCommand(planAutofillCmd)
	planCmd.AddCommand(planAddCmd)
	planCmd.AddCommand(planRemoveCmd)
	planCmd.AddCommand(planNotesCmd)
	planCmd.AddCommand(planAddonCmd)
}

// --- field prompts ---

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Track the on-site capture checklist",
}

var promptListCmd = &cobra.Command{
	Use:   "list <session-id>",
	Short: "List field prompts and their completion state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/sessions/"+args[0])
		if err != nil {
			return err
		}
		var rec session.Record
		if err := decodeJSON(resp, &rec); err != nil {
			return err
		}

		for _, p := range session.FieldPrompts {
			mark := " "
			if rec.State.PromptsDone[p.ID] {
				mark = "x"
			}
			fmt.Printf("[%s] %-18s %s\n", mark, p.ID, p.Text)
		}
		return nil
	},
}

var promptDoneCmd = &cobra.Command{
	Use:   "done <session-id> <prompt-id>",
	Short: "Mark a field prompt as complete",
	Args:  cobra.ExactArgs(2),
	RunE:  setPromptRunE(true),
}

var promptUndoCmd = &cobra.Command{
	Use:   "undo <session-id> <prompt-id>",
	Short: "Mark a field prompt as incomplete",
	Args:  cobra.ExactArgs(2),
	RunE:  setPromptRunE(false),
}

func setPromptRunE(done bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), "/sessions/"+args[0]+"/prompts/"+args[1],
			map[string]bool{"done": done})
		if err != nil {
			return err
		}
		var rec session.Record
		if err := decodeJSON(resp, &rec); err != nil {
			return err
		}

		if done {
			printSuccess("Prompt %s marked done", args[1])
		} else {
			printSuccess("Prompt %s marked not done", args[1])
		}
		return nil
	}
}

func init() {
	promptCmd.AddCommand(promptListCmd)
	promptCmd.AddCommand(promptDoneCmd)
	promptCmd.AddCommand(promptUndoCmd)
}

// --- disposition ---

var dispoCmd = &cobra.Command{
	Use:   "dispo <session-id>",
	Short: "Set the visit outcome",
	Long: `Set the visit outcome.

Examples:
  jobwalk dispo 5f2c --status sold
  jobwalk dispo 5f2c --status needs_followup --date 2026-04-09 --method text
  jobwalk dispo 5f2c --regen-notes --regen-plan`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{}
		if cmd.Flags().Changed("status") {
			v, _ := cmd.Flags().GetString("status")
			body["status"] = v
		}
		if cmd.Flags().Changed("date") {
			v, _ := cmd.Flags().GetString("date")
			body["followupDate"] = v
		}
		if cmd.Flags().Changed("method") {
			v, _ := cmd.Flags().GetString("method")
			body["followupMethod"] = v
		}
		if cmd.Flags().Changed("notes") {
			v, _ := cmd.Flags().GetString("notes")
			body["notes"] = v
		}
		regenNotes, _ := cmd.Flags().GetBool("regen-notes")
		regenPlan, _ := cmd.Flags().GetBool("regen-plan")
		body["regenNotes"] = regenNotes
		body["regenPlan"] = regenPlan

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), "/sessions/"+args[0]+"/disposition", body)
		if err != nil {
			return err
		}
		var rec session.Record
		if err := decodeJSON(resp, &rec); err != nil {
			return err
		}

		printSuccess("Disposition set to %s", rec.State.Dispo.Status)
		return nil
	},
}

func init() {
	dispoCmd.Flags().String("status", "", "visit outcome: unknown, sold, not_sold, needs_followup")
	dispoCmd.Flags().String("date", "", "follow-up date (YYYY-MM-DD)")
	dispoCmd.Flags().String("method", "", "follow-up contact method (call, text, email)")
	dispoCmd.Flags().String("notes", "", "disposition notes")
	dispoCmd.Flags().Bool("regen-notes", false, "regenerate notes from the status template")
	dispoCmd.Flags().Bool("regen-plan", false, "regenerate the action plan from the status template")
}

// --- summary / export / import ---

var summaryCmd = &cobra.Command{
	Use:   "summary <session-id>",
	Short: "Print the job handoff summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		html, _ := cmd.Flags().GetBool("html")
		output, _ := cmd.Flags().GetString("output")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := "/sessions/" + args[0] + "/summary"
		if html {
			path += "?format=html"
		}
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		body, err := readBody(resp)
		if err != nil {
			return err
		}

		if output != "" {
			if err := os.WriteFile(output, []byte(body), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			printSuccess("Summary written to %s", output)
			return nil
		}
		fmt.Print(body)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session as a JSON envelope",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/sessions/"+args[0]+"/export")
		if err != nil {
			return err
		}

		body, err := readBody(resp)
		if err != nil {
			return err
		}

		if output != "" {
			if err := os.WriteFile(output, []byte(body), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			printSuccess("Session exported to %s", output)
			return nil
		}
		fmt.Print(body)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a session from a JSON envelope",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		var envelope json.RawMessage
		if err := json.Unmarshal(data, &envelope); err != nil {
			return fmt.Errorf("invalid JSON in %s: %w", args[0], err)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/sessions/import", envelope)
		if err != nil {
			return err
		}
		var rec session.Record
		if err := decodeJSON(resp, &rec); err != nil {
			return err
		}

		printSuccess("Imported as session %s", rec.ID)
		fmt.Println(rec.ID)
		return nil
	},
}

func init() {
	summaryCmd.Flags().Bool("html", false, "render as an HTML page")
	summaryCmd.Flags().String("output", "", "write to file instead of stdout")
	exportCmd.Flags().String("output", "", "write to file instead of stdout")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
