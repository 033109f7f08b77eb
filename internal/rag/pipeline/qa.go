package pipeline

import (
	"context"
	"fmt"
	"strings"

	"FlousWise/internal/models"
	"FlousWise/internal/rag/interfaces"
	"FlousWise/internal/rag/schema"
	"FlousWise/pkg/logger"
	"FlousWise/pkg/util"
)

// noExcerptsMarker is emitted in place of book excerpts when retrieval
// returned nothing, so the model knows the section is intentionally empty.
const noExcerptsMarker = "(No relevant book excerpts found for this question)"

// systemMessage defines the advisor's role and behavior. It is identical for
// every query.
const systemMessage = `You are an expert financial advisor specializing in helping Moroccans manage their finances.

Your role:
- Provide practical, actionable financial advice
- Reference the user's specific financial situation (income, expenses, goals)
- Consider Moroccan economic reality (salaries, cost of living, programs)
- Cite relevant book wisdom when applicable
- Be empathetic but realistic

Guidelines:
1. Always personalize advice based on user's profile
2. Reference specific numbers from their financial data
3. Suggest local resources (government programs, opportunities)
4. Keep responses concise but comprehensive (3-5 paragraphs)
5. Use clear, simple language (avoid jargon)
6. End with 2-3 concrete action steps

Remember: You're helping real people with real financial challenges in Morocco.`

// QAPipeline assembles the final prompt from profile, regional context, and
// retrieved passages, and calls the LLM to generate the answer.
type QAPipeline struct {
	llm         interfaces.Generator
	regional    interfaces.RegionalContext
	temperature float64
	maxTokens   int
	log         *logger.Logger
}

// NewQAPipeline creates a new QAPipeline.
func NewQAPipeline(llm interfaces.Generator, regional interfaces.RegionalContext, temperature float64, maxTokens int, log *logger.Logger) *QAPipeline {
	return &QAPipeline{
		llm:         llm,
		regional:    regional,
		temperature: temperature,
		maxTokens:   maxTokens,
		log:         log,
	}
}

// Run builds the prompt and calls the LLM. Generation failures are returned
// as-is; the caller decides that they are fatal.
func (p *QAPipeline) Run(ctx context.Context, question string, profile *models.UserProfile, passages []schema.ScoredPassage) (string, error) {
	prompt := p.BuildPrompt(question, profile, passages)

	p.log.WithPayload(map[string]interface{}{
		"prompt_length": len(prompt),
		"passages":      len(passages),
	}).Debug("Sending prompt to LLM")

	resp, err := p.llm.GenerateContent(ctx, &models.GenerateRequest{
		System:      systemMessage,
		Prompt:      prompt,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// BuildPrompt assembles the prompt deterministically: identical inputs always
// produce the identical prompt string, with sections in fixed order.
func (p *QAPipeline) BuildPrompt(question string, profile *models.UserProfile, passages []schema.ScoredPassage) string {
	var b strings.Builder

	b.WriteString("You are answering a financial question for a Moroccan user.\n\n")
	b.WriteString(p.profileSection(profile))
	b.WriteString("\n\n")
	b.WriteString(p.regional.Render())
	b.WriteString("\n\n")
	b.WriteString(p.bookSection(passages))
	b.WriteString("\n\n")
	b.WriteString("USER QUESTION:\n")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString("Provide personalized financial advice based on:\n")
	b.WriteString("1. The user's specific financial situation (income, expenses, goals)\n")
	b.WriteString("2. Moroccan economic reality (salaries, programs, opportunities)\n")
	b.WriteString("3. Financial wisdom from the books above\n")
	b.WriteString("4. Practical action steps\n\n")
	b.WriteString("Be specific, reference numbers, and give actionable advice.")

	return b.String()
}

// profileSection renders the user's financial situation. An unavailable
// profile is stated explicitly instead of showing misleading zeros.
func (p *QAPipeline) profileSection(profile *models.UserProfile) string {
	if profile == nil || profile.Unavailable {
		return "USER FINANCIAL PROFILE:\n" +
			"(Profile not available - provide general advice and suggest completing the financial profile)"
	}

	var b strings.Builder
	b.WriteString("USER FINANCIAL PROFILE:\n")
	fmt.Fprintf(&b, "- Monthly Income: %s MAD\n", util.FormatThousands(profile.TotalIncome()))
	fmt.Fprintf(&b, "  (Salary: %s MAD, Freelance: %s MAD, Other: %s MAD)\n",
		util.FormatThousands(profile.MonthlyIncome.Salary),
		util.FormatThousands(profile.MonthlyIncome.Freelance),
		util.FormatThousands(profile.MonthlyIncome.Other))
	fmt.Fprintf(&b, "- Monthly Expenses: %s MAD\n", util.FormatThousands(profile.TotalExpenses()))
	fmt.Fprintf(&b, "  (Fixed: %s MAD, Variable: %s MAD)\n",
		util.FormatThousands(profile.TotalFixedExpenses()),
		util.FormatThousands(profile.TotalVariableExpenses()))
	fmt.Fprintf(&b, "- Savings Rate: %.1f%%\n", profile.SavingsRate()*100)
	fmt.Fprintf(&b, "- Total Debt: %s MAD\n", util.FormatThousands(profile.TotalDebt()))
	fmt.Fprintf(&b, "- Financial Goals: %d active goals", len(profile.FinancialGoals))
	if names := profile.GoalNames(3); len(names) > 0 {
		fmt.Fprintf(&b, "\n  Goals: %s", strings.Join(names, ", "))
	}
	return b.String()
}

// bookSection renders the retrieved excerpts with per-excerpt attribution.
func (p *QAPipeline) bookSection(passages []schema.ScoredPassage) string {
	if len(passages) == 0 {
		return "FINANCIAL WISDOM FROM BOOKS:\n" + noExcerptsMarker
	}

	var b strings.Builder
	b.WriteString("FINANCIAL WISDOM FROM BOOKS:\n")
	for i, passage := range passages {
		title := passage.Source
		if title == "" {
			title = "Unknown"
		}
		fmt.Fprintf(&b, "\nBook Excerpt %d (from '%s'):\n%s\n", i+1, title, passage.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
