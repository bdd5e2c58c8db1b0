package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/haggle/internal/adapters/httpapi"
	"github.com/bnema/haggle/internal/adapters/render/text"
	"github.com/bnema/haggle/internal/adapters/wire"
	"github.com/bnema/haggle/internal/domain"
	"github.com/bnema/haggle/internal/ports"
)

type classifyOptions struct {
	speaker   string
	addressee string
	role      string
	asJSON    bool
}

type classifyOutput struct {
	Intents  []classifiedIntent `json:"intents"`
	Entities []classifiedEntity `json:"entities"`
	Act      wire.Act           `json:"act"`
}

type classifiedIntent struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

type classifiedEntity struct {
	Kind   string  `json:"kind"`
	Value  string  `json:"value,omitempty"`
	Number float64 `json:"number,omitempty"`
	Unit   string  `json:"unit,omitempty"`
}

func newClassifyCmd(app *app) *cobra.Command {
	var opts classifyOptions

	cmd := &cobra.Command{
		Use:   "classify <text>",
		Short: "Classify a message and show how the agent reads it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, app, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVar(&opts.speaker, "speaker", httpapi.DefaultSpeaker, "Who says the message")
	cmd.Flags().StringVar(&opts.addressee, "addressee", "", "Who the message is for (default: this agent)")
	cmd.Flags().StringVar(&opts.role, "role", string(domain.RoleBuyer), "Speaker role: buyer or seller")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Render JSON output")

	return cmd
}

func runClassify(cmd *cobra.Command, app *app, message string, opts classifyOptions) error {
	classifier, err := app.classifier(cmd.Context())
	if err != nil {
		return err
	}
	service := app.service(classifier)

	addressee := opts.addressee
	if addressee == "" {
		addressee = app.cfg.Agent.Name
	}
	in := domain.InboundMessage{
		Text: message,
		MessageContext: domain.MessageContext{
			Speaker:   opts.speaker,
			Addressee: addressee,
			Role:      domain.Role(strings.ToLower(strings.TrimSpace(opts.role))),
		},
	}

	classify := func(ctx context.Context) (domain.Classification, error) {
		return service.Classify(ctx, ports.ClassifyRequest{Text: in.Text, Role: in.Role, Addressee: in.Addressee})
	}

	var classification domain.Classification
	if opts.asJSON {
		classification, err = classify(cmd.Context())
	} else {
		classification, err = runClassifyProgress(cmd.Context(), cmd.ErrOrStderr(), classify)
	}
	if err != nil {
		app.logger.Error("classification failed", "error", err)
		return err
	}

	act := service.Interpret(classification, in.MessageContext)
	if opts.asJSON {
		return writeClassifyJSON(cmd.OutOrStdout(), classification, act)
	}
	return writeClassifyText(cmd.OutOrStdout(), classification, act)
}

func writeClassifyJSON(w io.Writer, classification domain.Classification, act domain.NegotiationAct) error {
	out := classifyOutput{
		Intents:  make([]classifiedIntent, 0, len(classification.Intents)),
		Entities: make([]classifiedEntity, 0, len(classification.Entities)),
		Act:      wire.FromAct(act, ""),
	}
	for _, intent := range classification.Intents {
		out.Intents = append(out.Intents, classifiedIntent{Intent: intent.Label, Confidence: intent.Confidence})
	}
	for _, entity := range classification.Entities {
		out.Entities = append(out.Entities, classifiedEntity{
			Kind:   string(entity.Kind),
			Value:  entity.Value,
			Number: entity.Number,
			Unit:   entity.Unit,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func writeClassifyText(w io.Writer, classification domain.Classification, act domain.NegotiationAct) error {
	var b strings.Builder

	b.WriteString("intents:\n")
	for _, intent := range classification.Intents {
		fmt.Fprintf(&b, "  %-12s %.2f\n", intent.Label, intent.Confidence)
	}
	b.WriteString("entities:\n")
	for _, entity := range classification.Entities {
		fmt.Fprintf(&b, "  %-10s %s\n", entity.Kind, describeEntity(entity))
	}

	fmt.Fprintf(&b, "act: %s\n", act.Type)
	if len(act.Quantity) > 0 {
		fmt.Fprintf(&b, "quantity: %s\n", text.DescribeQuantity(act.Quantity))
	}
	if act.Price != nil {
		fmt.Fprintf(&b, "price: %s %s\n", act.Price.Value.String(), act.Price.Unit)
	}
	if act.Metadata.Addressee != "" {
		fmt.Fprintf(&b, "addressee: %s\n", act.Metadata.Addressee)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func describeEntity(entity domain.Entity) string {
	switch entity.Kind {
	case domain.EntityCurrency:
		return strings.TrimSpace(fmt.Sprintf("%g %s", entity.Number, entity.Unit))
	case domain.EntityNumber:
		return fmt.Sprintf("%g", entity.Number)
	default:
		return entity.Value
	}
}
