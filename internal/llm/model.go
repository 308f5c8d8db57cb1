package llm

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/dfrestrepo/ramatrack/internal/config"
	"github.com/dfrestrepo/ramatrack/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Prompts are kept in Spanish: the source material is Colombian judicial text
// and the consumers are Spanish-speaking lawyers.
const summarizeSystemPrompt = `Eres un asistente legal experto en el sistema judicial colombiano.
Resume el texto de una actuación judicial (anotación) de manera concisa y clara,
extrayendo los puntos clave para un abogado que necesita entender rápidamente de qué se trata.
Enfócate en el propósito principal de la actuación, las decisiones tomadas,
las fechas importantes mencionadas y cualquier requerimiento o plazo.`

const classifySystemPrompt = `Eres un asistente legal experto en el sistema judicial colombiano.
Analiza la actuación judicial (tipo y anotación) y clasifica su urgencia en una de las
siguientes categorías: ALTA, MEDIA, BAJA.

Criterios:
- ALTA: requiere acción inmediata, vencimiento de términos inminente, citaciones a
  audiencias próximas, decisiones cruciales que cambian el estado del proceso.
- MEDIA: actualizaciones importantes que deben revisarse pronto pero no requieren
  acción inmediata, autos de trámite relevantes.
- BAJA: notificaciones informativas, actualizaciones menores, constancias.

Responde con una sola palabra: ALTA, MEDIA o BAJA.`

// Model is a langchaingo-backed Oracle.
type Model struct {
	llm       llms.Model
	modelName string
}

var _ Oracle = (*Model)(nil)

// NewOracle builds an Oracle from configuration. ProviderDisabled yields the
// Disabled implementation rather than an error.
func NewOracle(ctx context.Context, cfg config.Config) (Oracle, error) {
	if cfg.LLMProvider == config.ProviderDisabled {
		return Disabled{}, nil
	}
	return NewModel(ctx, cfg)
}

// NewModel creates the langchaingo model for the configured provider.
func NewModel(ctx context.Context, cfg config.Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderGoogleAI:
		if cfg.GoogleAPIKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY required for googleai provider")
		}
		model, err = googleai.New(ctx,
			googleai.WithAPIKey(cfg.GoogleAPIKey),
			googleai.WithDefaultModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create googleai model: %w", err)
		}

	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY required for openai provider")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderBedrock:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		model, err = bedrock.New(
			bedrock.WithModel(cfg.LLMModel),
			bedrock.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{llm: model, modelName: cfg.LLMModel}, nil
}

// Summarize implements Oracle. Empty text yields an empty summary without a
// backend call.
func (m *Model) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	userPrompt := fmt.Sprintf("Texto de la actuación judicial:\n%s\n\nResumen conciso:", text)
	response, err := m.generateWithSystem(ctx, summarizeSystemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return strings.TrimSpace(response), nil
}

// ClassifyUrgency implements Oracle.
func (m *Model) ClassifyUrgency(ctx context.Context, actionType, text string) (models.Urgency, error) {
	userPrompt := fmt.Sprintf(
		"Tipo de Actuación: %s\nAnotación de la Actuación: %s\n\nClasificación de Urgencia (solo una palabra: ALTA, MEDIA, o BAJA):",
		actionType, text)

	response, err := m.generateWithSystem(ctx, classifySystemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return ParseUrgency(response)
}

func (m *Model) generateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	response, err := m.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return response.Choices[0].Content, nil
}

// ModelName returns the configured model identifier.
func (m *Model) ModelName() string {
	return m.modelName
}
