package observability

import (
	"context"
	"log"
	"os"
	"time"

	langfuse "github.com/henomis/langfuse-go"
	"github.com/henomis/langfuse-go/model"
	"github.com/openai/openai-go/responses"

	"github.com/Conceptual-Machines/practice-companion/internal/config"
)

// LangfuseClient wraps the Langfuse client with our configuration
type LangfuseClient struct {
	client  *langfuse.Langfuse
	enabled bool
	ctx     context.Context
}

var globalClient *LangfuseClient

// InitializeLangfuse initializes the global Langfuse client
func InitializeLangfuse(ctx context.Context, cfg *config.Config) *LangfuseClient {
	if !cfg.LangfuseEnabled || cfg.LangfuseSecretKey == "" {
		log.Println("⚠️  Langfuse not configured (LANGFUSE_ENABLED=false or LANGFUSE_SECRET_KEY not set)")
		globalClient = &LangfuseClient{enabled: false, ctx: ctx}
		return globalClient
	}

	// The henomis SDK reads its keys and host from the environment
	lf := langfuse.New(ctx)
	globalClient = &LangfuseClient{
		client:  lf,
		enabled: true,
		ctx:     ctx,
	}

	log.Printf("✅ Langfuse initialized (host: %s, public key set: %v)",
		cfg.LangfuseHost, os.Getenv("LANGFUSE_PUBLIC_KEY") != "")
	return globalClient
}

// GetClient returns the global Langfuse client
func GetClient() *LangfuseClient {
	if globalClient == nil {
		return &LangfuseClient{enabled: false, ctx: context.Background()}
	}
	return globalClient
}

// IsEnabled returns whether Langfuse is enabled
func (c *LangfuseClient) IsEnabled() bool {
	return c.enabled && c.client != nil
}

// StartTrace starts a new trace in Langfuse
func (c *LangfuseClient) StartTrace(ctx context.Context, name string, metadata map[string]interface{}) *Trace {
	if !c.IsEnabled() {
		return &Trace{enabled: false, ctx: ctx}
	}

	trace, err := c.client.Trace(&model.Trace{
		Name:     name,
		Metadata: metadata,
	})
	if err != nil {
		log.Printf("⚠️  Failed to create Langfuse trace: %v", err)
		return &Trace{enabled: false, ctx: ctx}
	}

	return &Trace{
		trace:   trace,
		enabled: true,
		ctx:     ctx,
		client:  c.client,
	}
}

// Trace represents a Langfuse trace
type Trace struct {
	trace   *model.Trace
	enabled bool
	ctx     context.Context
	client  *langfuse.Langfuse
}

// Generation creates a new generation span within the trace
func (t *Trace) Generation(name string, metadata map[string]interface{}) *Generation {
	if !t.enabled {
		return &Generation{enabled: false}
	}

	now := time.Now()
	gen, err := t.client.Generation(&model.Generation{
		TraceID:   t.trace.ID,
		Name:      name,
		StartTime: &now,
		Metadata:  metadata,
	}, nil)
	if err != nil {
		log.Printf("⚠️  Failed to create Langfuse generation: %v", err)
		return &Generation{enabled: false}
	}

	return &Generation{
		generation: gen,
		enabled:    true,
		client:     t.client,
	}
}

// Finish flushes the trace's batched events
func (t *Trace) Finish() {
	if t.enabled && t.client != nil {
		t.client.Flush(t.ctx)
	}
}

// Generation represents a Langfuse generation span
type Generation struct {
	generation *model.Generation
	enabled    bool
	client     *langfuse.Langfuse
}

// Input sets the input for the generation
func (g *Generation) Input(input interface{}) {
	if g.enabled && g.generation != nil {
		g.generation.Input = input
	}
}

// Output sets the output for the generation
func (g *Generation) Output(output interface{}) {
	if g.enabled && g.generation != nil {
		g.generation.Output = output
	}
}

// Metadata adds metadata to the generation
func (g *Generation) Metadata(metadata map[string]interface{}) {
	if !g.enabled || g.generation == nil {
		return
	}
	md, ok := g.generation.Metadata.(map[string]interface{})
	if !ok || md == nil {
		md = make(map[string]interface{})
	}
	for k, v := range metadata {
		md[k] = v
	}
	g.generation.Metadata = md
}

// SetLevel sets the level of the generation, e.g. "ERROR" for failed calls
func (g *Generation) SetLevel(level string) {
	if g.enabled && g.generation != nil {
		g.generation.Level = model.ObservationLevel(level)
	}
}

// Finish completes the generation and sends it to Langfuse
func (g *Generation) Finish() {
	if g.enabled && g.generation != nil && g.client != nil {
		now := time.Now()
		g.generation.EndTime = &now
		if _, err := g.client.GenerationEnd(g.generation); err != nil {
			log.Printf("⚠️  Failed to end Langfuse generation: %v", err)
		}
	}
}

// LogOpenAIResponse records model, recognized text, token usage and cost of a
// Responses API call.
func (g *Generation) LogOpenAIResponse(modelName, prompt string, resp *responses.Response) {
	if !g.enabled || g.generation == nil || resp == nil {
		return
	}

	cost := CalculateOpenAICost(modelName, resp.Usage)
	g.Input(prompt)
	if text := resp.OutputText(); text != "" {
		g.Output(text)
	}
	g.generation.Model = modelName
	g.generation.Usage = model.Usage{
		Input:     int(resp.Usage.InputTokens),
		Output:    int(resp.Usage.OutputTokens),
		Total:     int(resp.Usage.TotalTokens),
		Unit:      model.ModelUsageUnitTokens,
		TotalCost: cost,
	}
	g.Metadata(map[string]interface{}{
		"model":    modelName,
		"cost_usd": FormatCost(cost),
	})
}

// LogTextResponse records a plain text response for providers without usage reporting
func (g *Generation) LogTextResponse(modelName, prompt, text string) {
	if !g.enabled || g.generation == nil {
		return
	}
	g.Input(prompt)
	g.Output(text)
	g.generation.Model = modelName
}
