package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"jobhunt-backend/internal/ai"
	"jobhunt-backend/internal/bootstrap"
	"jobhunt-backend/internal/extract"
	"jobhunt-backend/internal/llm"
	"jobhunt-backend/internal/shared/config"
)

var stdin io.Reader = os.Stdin

func kindsAction(ctx context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer
	for _, k := range ai.Kinds {
		fmt.Fprintf(w, "%-22s %s\n", k.Slug(), k.Description())
	}
	return nil
}

func renderAction(ctx context.Context, cmd *cli.Command) error {
	kind, body, err := readRequest(ctx, cmd)
	if err != nil {
		return err
	}
	prompt, err := ai.NewManager(ai.Deps{}).Render(kind, body)
	if err != nil {
		return describe(err)
	}
	w := cmd.Root().Writer
	fmt.Fprintf(w, "=== system ===\n%s\n\n=== user ===\n%s\n", prompt.System, prompt.User)
	return nil
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	kind, body, err := readRequest(ctx, cmd)
	if err != nil {
		return err
	}

	cfg := config.Load()
	if p := cmd.String("provider"); p != "" {
		cfg.LLMProvider = p
	}
	client, err := bootstrap.BuildLLM(ctx, cfg)
	if err != nil {
		return err
	}
	if _, ok := client.(llm.Placeholder); ok {
		return fmt.Errorf("no API key configured for provider %q", cfg.LLMProvider)
	}

	gen, err := ai.NewManager(ai.Deps{LLM: client}).Run(ctx, kind, body)
	if err != nil {
		return describe(err)
	}
	out, err := json.MarshalIndent(gen, "", "  ")
	if err != nil {
		return err
	}
	if path := cmd.String("out"); path != "" {
		return os.WriteFile(path, append(out, '\n'), 0o644)
	}
	fmt.Fprintln(cmd.Root().Writer, string(out))
	return nil
}

// readRequest loads the request body and merges extracted resume text into
// it when --resume is set.
func readRequest(ctx context.Context, cmd *cli.Command) (ai.Kind, []byte, error) {
	kind, ok := ai.ParseKind(cmd.String("kind"))
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ai.ErrUnknownKind, cmd.String("kind"))
	}

	var (
		raw []byte
		err error
	)
	if path := cmd.String("input"); path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", nil, fmt.Errorf("read input: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}

	resumePath := cmd.String("resume")
	if resumePath == "" {
		return kind, raw, nil
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", nil, fmt.Errorf("input must be a JSON object: %w", err)
	}
	if fields == nil {
		return "", nil, errors.New("input must be a JSON object")
	}
	text, err := resumeText(ctx, resumePath)
	if err != nil {
		return "", nil, err
	}
	fields["resumeText"] = text
	merged, err := json.Marshal(fields)
	if err != nil {
		return "", nil, err
	}
	return kind, merged, nil
}

func resumeText(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	mime := extract.Detect(http.DetectContentType(data), path, data)
	if mime == "" {
		return "", fmt.Errorf("%s: %w", path, extract.ErrUnsupported)
	}
	return extract.Text(ctx, data, mime)
}

// describe flattens validation issues into a readable error.
func describe(err error) error {
	var verr *ai.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	parts := make([]string, 0, len(verr.Issues))
	for _, is := range verr.Issues {
		parts = append(parts, is.Field+": "+is.Issue)
	}
	return fmt.Errorf("%s (%s)", verr.Message, strings.Join(parts, ", "))
}
