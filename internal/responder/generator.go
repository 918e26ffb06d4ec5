package responder

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"

	"taxbuddy-backend/internal/intent"
	"taxbuddy-backend/internal/model"
	"taxbuddy-backend/internal/taxdata"
)

// Response 生成的结构化回复
type Response struct {
	Message     string
	Topic       intent.Topic
	Suggestions []string
	Actions     []model.Action
	Confidence  float64
}

// Generator 模板式响应生成器。除随机选模板外是纯函数，
// 随机源注入进来，测试时可固定种子。
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

func NewWithSource(src rand.Source) *Generator {
	return &Generator{rng: rand.New(src)}
}

var keywordPattern = regexp.MustCompile(`(?i)\b(tax|irs|deduction|refund|filing|business|income|1040)\b`)

// Generate 按类别生成回复。类别未识别或无专属结构时回退到通用回复。
func (g *Generator) Generate(topic intent.Topic, message string, session *model.Session) Response {
	template := g.pickTemplate(topic)

	switch topic {
	case intent.TopicDeductions:
		return deductionsResponse(template)
	case intent.TopicFiling:
		return filingResponse(template)
	case intent.TopicBusiness:
		return businessResponse(template)
	case intent.TopicDeadline:
		return deadlineResponse(template)
	case intent.TopicRefund:
		return refundResponse(template)
	default:
		return generalResponse(template, message, topic)
	}
}

func (g *Generator) pickTemplate(topic intent.Topic) string {
	pool, ok := templates[topic]
	if !ok {
		pool = fallbackTemplates
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return pool[g.rng.Intn(len(pool))]
}

func deductionsResponse(template string) Response {
	var b strings.Builder
	b.WriteString(template)
	b.WriteString("\n\n")

	top := taxdata.CommonDeductions
	if len(top) > 5 {
		top = top[:5]
	}
	for _, d := range top {
		amount := "varies"
		if d.MaxAmount > 0 {
			amount = "$" + formatAmount(d.MaxAmount)
		}
		fmt.Fprintf(&b, "• **%s**: %s (up to %s)\n", d.Name, d.Description, amount)
	}

	b.WriteString("\n💡 **Remember**: Keep all receipts and documentation for any deductions you claim. The eligibility and limits may vary based on your specific situation.")

	return Response{
		Message: b.String(),
		Topic:   intent.TopicDeductions,
		Suggestions: []string{
			"Tell me more about business deductions",
			"What about charitable donation limits?",
			"How do I track medical expenses?",
			"Can I deduct home office expenses?",
		},
		Actions: []model.Action{
			{Label: "View deduction calculator", Icon: "🧮"},
			{Label: "Download receipt tracking template", Icon: "📄"},
		},
		Confidence: confidenceDeductions,
	}
}

func filingResponse(template string) Response {
	var b strings.Builder
	b.WriteString(template)
	b.WriteString("\n\n")

	for i, step := range taxdata.FilingSteps {
		fmt.Fprintf(&b, "%d. **%s**: %s\n", i+1, step.Title, step.Description)
	}

	b.WriteString("\n📋 **Important**: Choose between paper filing (6-8 weeks processing) or e-filing (faster, usually 21 days for refunds).")

	return Response{
		Message: b.String(),
		Topic:   intent.TopicFiling,
		Suggestions: []string{
			"What forms do I need?",
			"How do I e-file my taxes?",
			"What if I made a mistake on my return?",
			"Can I file an extension?",
		},
		Actions: []model.Action{
			{Label: "Find my local tax office", Icon: "📍"},
			{Label: "IRS e-file options", Icon: "💻"},
		},
		Confidence: confidenceFiling,
	}
}

func businessResponse(template string) Response {
	var b strings.Builder
	b.WriteString(template)
	b.WriteString("\n\n")

	top := taxdata.BusinessConsiderations
	if len(top) > 4 {
		top = top[:4]
	}
	for _, c := range top {
		fmt.Fprintf(&b, "• **%s**: %s\n", c.Category, c.Description)
	}

	b.WriteString("\n🏢 **Key Reminder**: Business owners often need to make quarterly estimated tax payments. Keep detailed records of all business income and expenses.")

	return Response{
		Message: b.String(),
		Topic:   intent.TopicBusiness,
		Suggestions: []string{
			"How do quarterly payments work?",
			"What business expenses can I deduct?",
			"Do I need an EIN?",
			"LLC vs Corporation tax differences?",
		},
		Actions: []model.Action{
			{Label: "Quarterly payment calculator", Icon: "📊"},
			{Label: "Business expense tracker", Icon: "💼"},
		},
		Confidence: confidenceBusiness,
	}
}

func deadlineResponse(template string) Response {
	var b strings.Builder
	b.WriteString(template)
	b.WriteString("\n\n")

	for _, d := range taxdata.Deadlines {
		fmt.Fprintf(&b, "• **%s**: %s - %s\n", d.Name, d.Date, d.Description)
	}

	b.WriteString("\n⚠️ **Important**: Missing deadlines can result in penalties and interest charges. Mark these dates in your calendar!")

	return Response{
		Message: b.String(),
		Topic:   intent.TopicDeadline,
		Suggestions: []string{
			"Can I file an extension?",
			"What are the penalty rates?",
			"How do I make estimated payments?",
			"What if I can't pay on time?",
		},
		Actions: []model.Action{
			{Label: "Set deadline reminders", Icon: "🔔"},
			{Label: "Extension request form", Icon: "📋"},
		},
		Confidence: confidenceDeadline,
	}
}

func refundResponse(template string) Response {
	var b strings.Builder
	b.WriteString(template)
	b.WriteString("\n\n**Factors affecting refund timing:**\n")

	for _, factor := range taxdata.Refunds.Factors {
		fmt.Fprintf(&b, "• %s\n", factor)
	}

	fmt.Fprintf(&b, "\n💰 **Typical Timeline**: E-filed returns with direct deposit usually process within %s. Paper returns take %s.",
		taxdata.Refunds.EfileDirectDeposit, taxdata.Refunds.PaperFiling)

	return Response{
		Message: b.String(),
		Topic:   intent.TopicRefund,
		Suggestions: []string{
			"How can I track my refund?",
			"Why is my refund delayed?",
			"Can I change my direct deposit info?",
			"What if my refund is wrong?",
		},
		Actions: []model.Action{
			{Label: "IRS refund tracker", Icon: "🔍"},
			{Label: "Set up direct deposit", Icon: "🏦"},
		},
		Confidence: confidenceRefund,
	}
}

func generalResponse(template, message string, topic intent.Topic) Response {
	var b strings.Builder
	b.WriteString(template)

	// 从原始输入里摘出税务关键词做回显
	if keywords := keywordPattern.FindAllString(message, -1); len(keywords) > 0 {
		fmt.Fprintf(&b, "\n\nI noticed you mentioned: %s. ", strings.Join(keywords, ", "))
	}

	b.WriteString(`

I'm here to help with all aspects of taxation including:
• Personal income tax filing
• Business tax obligations
• Deductions and credits
• Tax planning strategies
• IRS procedures and deadlines

Could you be more specific about what you'd like to know?`)

	if topic == "" {
		topic = intent.TopicGeneral
	}

	return Response{
		Message: b.String(),
		Topic:   topic,
		Suggestions: []string{
			"What deductions can I claim?",
			"How do I file my taxes?",
			"Business tax questions",
			"When are tax deadlines?",
		},
		Actions: []model.Action{
			{Label: "Browse tax topics", Icon: "📚"},
			{Label: "Tax calculator tools", Icon: "🧮"},
		},
		Confidence: confidenceFallback,
	}
}

// formatAmount 千分位格式化，13850 -> "13,850"
func formatAmount(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
