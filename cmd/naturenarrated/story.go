package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"naturenarrated/pkg/logging"
	"naturenarrated/pkg/model"
	"naturenarrated/pkg/narrator"
	"naturenarrated/pkg/tts"
)

var storyOpts struct {
	name      string
	location  string
	lat       float64
	lng       float64
	interests []string
	length    string
	webSearch string
	speak     string
}

var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "Generate one story and print it",
	Example: `  naturenarrated story --name "Rock Creek Trail" --location "Washington, DC" \
    --lat 38.95 --lng -77.05 --interest birds:songs-hear --interest history --length medium`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interests, err := parseInterests(storyOpts.interests)
		if err != nil {
			return err
		}

		cleanupLogs, err := logging.Init(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		defer cleanupLogs()

		svcs, err := buildServices(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		n, err := svcs.narrator.Generate(cmd.Context(), model.StoryRequest{
			Trail: model.Place{
				Name:        storyOpts.name,
				Location:    storyOpts.location,
				Coordinates: model.Coordinates{Lat: storyOpts.lat, Lng: storyOpts.lng},
			},
			Interests:    interests,
			Length:       model.LengthMode(storyOpts.length),
			UseWebSearch: model.WebSearchMode(storyOpts.webSearch),
		})
		if err != nil {
			if narrator.IsRateLimited(err) {
				var nerr *narrator.Error
				errors.As(err, &nerr)
				return fmt.Errorf("%w (retry in %ds)", err, max(nerr.RetryAfterSeconds(), 1))
			}
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, n.Story)
		fmt.Fprintf(cmd.ErrOrStderr(), "\n[%s, augmented=%t, tokens in=%d out=%d, %s]\n",
			n.Model, n.Augmented, n.InputTokens, n.OutputTokens, n.Latency.Round(time.Millisecond))

		if storyOpts.speak == "" {
			return nil
		}
		return speakToFile(cmd, svcs.speech, n.Story, storyOpts.speak)
	},
}

func init() {
	f := storyCmd.Flags()
	f.StringVar(&storyOpts.name, "name", "", "Trail or place name")
	f.StringVar(&storyOpts.location, "location", "", "Region, e.g. \"Sierra Nevada, California\"")
	f.Float64Var(&storyOpts.lat, "lat", 0, "Latitude")
	f.Float64Var(&storyOpts.lng, "lng", 0, "Longitude")
	f.StringArrayVar(&storyOpts.interests, "interest", nil, "Interest as category[:subcategory], repeatable")
	f.StringVar(&storyOpts.length, "length", "short", "short, medium or long")
	f.StringVar(&storyOpts.webSearch, "web-search", "auto", "on, off or auto")
	f.StringVar(&storyOpts.speak, "speak", "", "Also synthesize the story to this MP3 file")
	_ = storyCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(storyCmd)
}

// parseInterests turns "birds:songs-hear" or "history" into selections.
func parseInterests(raw []string) ([]model.InterestSelection, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one --interest is required")
	}
	out := make([]model.InterestSelection, 0, len(raw))
	for _, r := range raw {
		cat, sub, _ := strings.Cut(strings.TrimSpace(r), ":")
		if cat == "" {
			return nil, fmt.Errorf("invalid interest %q: expected category[:subcategory]", r)
		}
		if sub == "" {
			sub = string(model.SubcategoryOverview)
		}
		out = append(out, model.InterestSelection{
			Category:    model.Category(cat),
			Subcategory: model.Subcategory(sub),
		})
	}
	return out, nil
}

// speakToFile writes the synthesized story to path. The file is removed again
// if synthesis or the final flush fails, so no partial MP3 is left behind.
func speakToFile(cmd *cobra.Command, speech tts.Provider, story, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close audio file: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if _, err := speech.Synthesize(cmd.Context(), tts.CleanForSpeech(story), "", f); err != nil {
		return fmt.Errorf("speech synthesis failed: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Audio written to %s\n", path)
	return nil
}
