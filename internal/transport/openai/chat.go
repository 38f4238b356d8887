package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/skinrec/internal/domain"
	"github.com/kailas-cloud/skinrec/internal/metrics"
	"github.com/kailas-cloud/skinrec/internal/usecase/advisor"
)

const (
	intentPrompt = `你是护肤咨询助手的意图分类器。只输出以下标签之一：
skin_consultation（询问皮肤状况或护理方法）
product_recommendation（希望获得产品推荐或购买建议）
small_talk（问候或与护肤无关的闲聊）`

	profilePrompt = `从用户消息中提取护肤画像，只返回一个JSON对象，字段可缺省：
{"年龄": "数字或年龄段", "性别": "男/女", "皮肤类型": "干性/油性/混合性/敏感性/中性",
"主要皮肤问题": ["问题1", "问题2"], "主要特征": "一句话描述"}
无法判断的字段不要编造。`

	visionPrompt = `分析这张面部照片的皮肤状况，只返回一个JSON对象：
{"皮肤类型": "干性/油性/混合性/敏感性/中性", "主要问题": ["确实可见的问题"],
"年龄段": "青年/中年/老年", "性别": "男性/女性", "详细分析": "完整描述"}
只依据照片中可见的情况，不要夸大或虚构。`

	questionsPrompt = `你是护肤顾问。根据用户画像和相关皮肤知识，提出3到5个有助于进一步了解用户情况的跟进问题，
例如护肤习惯、作息、过往使用过的产品。只返回JSON字符串数组，例如 ["问题1", "问题2", "问题3"]。`

	trustPrompt = `你是护肤顾问。根据用户画像、相关知识和推荐产品，解释这些产品为什么适合用户。只返回一个JSON对象：
{"problem_solution": "产品如何解决用户的皮肤问题", "scientific_basis": "成分的科学依据",
"usage_guidance": "使用建议和注意事项",
"expected_results": {"short_term": "短期效果", "long_term": "长期效果", "timeline": "预期时间线"}}
不要夸大功效，不要做医疗承诺。`
)

// ChatConfig holds the chat and vision model settings.
type ChatConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	VisionModel string
	MaxTokens   int
	Temperature float32
	Logger      *zap.Logger
}

// ChatGenerator implements advisor.TextGenerator and advisor.ImageAnalyzer
// over the chat completions API.
type ChatGenerator struct {
	client      *openai.Client
	model       string
	visionModel string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewChatGenerator creates a chat model client. VisionModel defaults to Model.
func NewChatGenerator(cfg *ChatConfig) *ChatGenerator {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	vision := cfg.VisionModel
	if vision == "" {
		vision = cfg.Model
	}
	return &ChatGenerator{
		client:      newClient(cfg.APIKey, cfg.BaseURL),
		model:       cfg.Model,
		visionModel: vision,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      log,
	}
}

// ClassifyIntent asks the model for an intent label. An unrecognized label
// falls back to keyword rules.
func (g *ChatGenerator) ClassifyIntent(ctx context.Context, message string) (advisor.Intent, error) {
	reply, err := g.complete(ctx, "intent", g.model, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: intentPrompt},
		{Role: openai.ChatMessageRoleUser, Content: message},
	})
	if err != nil {
		return "", err
	}
	if in, ok := advisor.ParseIntent(reply); ok {
		return in, nil
	}
	g.logger.Debug("unrecognized intent label", zap.String("label", reply))
	return advisor.GuessIntent(message), nil
}

// ExtractProfile returns the raw model reply describing the user.
func (g *ChatGenerator) ExtractProfile(ctx context.Context, message string) (string, error) {
	return g.complete(ctx, "profile", g.model, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: profilePrompt},
		{Role: openai.ChatMessageRoleUser, Content: message},
	})
}

// GenerateQuestions asks for follow-up questions about the user's situation.
func (g *ChatGenerator) GenerateQuestions(ctx context.Context, b advisor.Brief) (string, error) {
	return g.complete(ctx, "questions", g.model, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: questionsPrompt},
		{Role: openai.ChatMessageRoleUser, Content: "用户画像：\n" + b.ProfileText() +
			"\n\n相关知识：\n" + b.KnowledgeText()},
	})
}

// ExplainTrust asks why the recommended products fit the user.
func (g *ChatGenerator) ExplainTrust(ctx context.Context, b advisor.Brief) (string, error) {
	return g.complete(ctx, "trust", g.model, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: trustPrompt},
		{Role: openai.ChatMessageRoleUser, Content: "用户画像：\n" + b.ProfileText() +
			"\n\n相关知识：\n" + b.KnowledgeText() +
			"\n\n推荐产品：\n" + b.RecommendationText()},
	})
}

// AnalyzeSkin sends the photo inline as a data URL.
func (g *ChatGenerator) AnalyzeSkin(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("empty image: %w", domain.ErrInvalidRequest)
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	url := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)

	return g.complete(ctx, "vision", g.visionModel, []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: visionPrompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL:    url,
					Detail: openai.ImageURLDetailAuto,
				}},
			},
		},
	})
}

func (g *ChatGenerator) complete(ctx context.Context, op, model string, msgs []openai.ChatCompletionMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: g.temperature,
	}
	if g.maxTokens > 0 {
		req.MaxTokens = g.maxTokens
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	metrics.ModelRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ModelRequestsTotal.WithLabelValues(op, "error").Inc()
		return "", apiError(op, err, domain.ErrModelUnavailable)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.ModelRequestsTotal.WithLabelValues(op, "empty").Inc()
		return "", fmt.Errorf("%s: empty completion: %w", op, domain.ErrModelUnavailable)
	}

	metrics.ModelRequestsTotal.WithLabelValues(op, "success").Inc()
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// HealthCheck lists models, which costs no tokens.
func (g *ChatGenerator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
