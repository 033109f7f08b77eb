package regional

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"FlousWise/internal/rag/interfaces"
	"FlousWise/pkg/logger"
	"FlousWise/pkg/util"
)

// Salaries holds wage reference data in MAD per month.
type Salaries struct {
	MinimumWage   int            `json:"minimum_wage"`
	AverageSalary int            `json:"average_salary"`
	Cities        map[string]int `json:"cities"`
}

// Program describes a single government support program.
type Program struct {
	Name        string   `json:"name"`
	Eligibility string   `json:"eligibility"`
	Amount      string   `json:"amount"`
	Programs    []string `json:"programs"`
}

// Range is a min/max amount in MAD.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Opportunities lists local income opportunities.
type Opportunities struct {
	FreelancePlatforms []string `json:"freelance_platforms"`
	TutoringRate       *Range   `json:"tutoring_rate"`
	WebDevProject      *Range   `json:"web_dev_project"`
	SideIncomeIdeas    []string `json:"side_income_ideas"`
}

// FinancialReality carries short statements about household finances.
type FinancialReality struct {
	PaycheckToPaycheck string `json:"paycheck_to_paycheck"`
	FinancialStress    string `json:"financial_stress"`
	EmergencySavings   string `json:"emergency_savings"`
}

// Context is the full regional economic data set.
type Context struct {
	Salaries           *Salaries           `json:"salaries"`
	GovernmentPrograms map[string]*Program `json:"government_programs"`
	Opportunities      *Opportunities      `json:"opportunities"`
	FinancialReality   *FinancialReality   `json:"financial_reality"`
}

// Provider loads the regional economic context once at startup and renders it
// for prompt assembly. A missing or unreadable file is not fatal: the provider
// falls back to an empty context and Render emits a generic note instead.
type Provider struct {
	context *Context
	log     *logger.Logger
}

// NewProvider loads the context from the given JSON file.
func NewProvider(path string, log *logger.Logger) *Provider {
	p := &Provider{log: log}

	data, err := os.ReadFile(path)
	if err != nil {
		log.WithPayload(map[string]interface{}{"path": path, "error": err.Error()}).
			Warn("区域背景数据文件不可用，将使用空背景")
		return p
	}

	var ctx Context
	if err := json.Unmarshal(data, &ctx); err != nil {
		log.WithPayload(map[string]interface{}{"path": path, "error": err.Error()}).
			Warn("区域背景数据解析失败，将使用空背景")
		return p
	}

	p.context = &ctx
	log.WithPayload(map[string]interface{}{"path": path}).Info("区域背景数据加载完成")
	return p
}

// Context returns the raw loaded context, or nil when unavailable.
func (p *Provider) Context() *Context {
	return p.context
}

// Render formats the context for inclusion in the LLM prompt.
// Output is deterministic: map-backed sections are sorted by key.
func (p *Provider) Render() string {
	if p.context == nil {
		return "MOROCCAN ECONOMIC CONTEXT:\n" +
			"Note: Detailed context not available. " +
			"Provide general financial advice adapted for Morocco."
	}

	var sections []string

	if s := p.context.Salaries; s != nil {
		var b strings.Builder
		b.WriteString("Salaries:")
		if s.MinimumWage > 0 {
			fmt.Fprintf(&b, "\n- Minimum wage: %s MAD/month", util.FormatThousands(float64(s.MinimumWage)))
		}
		if s.AverageSalary > 0 {
			fmt.Fprintf(&b, "\n- Average salary: %s MAD/month", util.FormatThousands(float64(s.AverageSalary)))
		}
		cities := make([]string, 0, len(s.Cities))
		for city := range s.Cities {
			cities = append(cities, city)
		}
		sort.Strings(cities)
		for _, city := range cities {
			fmt.Fprintf(&b, "\n- %s: %s MAD/month", city, util.FormatThousands(float64(s.Cities[city])))
		}
		sections = append(sections, b.String())
	}

	if programs := p.context.GovernmentPrograms; len(programs) > 0 {
		var b strings.Builder
		b.WriteString("Government Programs:")
		if ramed, ok := programs["RAMED"]; ok {
			name := ramed.Name
			if name == "" {
				name = "Free Healthcare"
			}
			eligibility := ramed.Eligibility
			if eligibility == "" {
				eligibility = "Low-income families"
			}
			fmt.Fprintf(&b, "\n- RAMED (%s): %s", name, eligibility)
		}
		if tayssir, ok := programs["Tayssir"]; ok {
			name := tayssir.Name
			if name == "" {
				name = "Education Support"
			}
			amount := tayssir.Amount
			if amount == "" {
				amount = "60-140 MAD/month per child"
			}
			fmt.Fprintf(&b, "\n- Tayssir (%s): %s", name, amount)
		}
		if indh, ok := programs["INDH"]; ok && len(indh.Programs) > 0 {
			fmt.Fprintf(&b, "\n- INDH: %s", strings.Join(indh.Programs, ", "))
		}
		if housing, ok := programs["housing_subsidies"]; ok && len(housing.Programs) > 0 {
			fmt.Fprintf(&b, "\n- Housing subsidies: %s", strings.Join(housing.Programs, ", "))
		}
		sections = append(sections, b.String())
	}

	if opps := p.context.Opportunities; opps != nil {
		var b strings.Builder
		b.WriteString("Income Opportunities:")
		if len(opps.FreelancePlatforms) > 0 {
			fmt.Fprintf(&b, "\n- Freelance platforms: %s", strings.Join(opps.FreelancePlatforms, ", "))
		}
		if r := opps.TutoringRate; r != nil {
			fmt.Fprintf(&b, "\n- Tutoring: %d-%d MAD/hour", r.Min, r.Max)
		}
		if r := opps.WebDevProject; r != nil {
			fmt.Fprintf(&b, "\n- Web development projects: %s-%s MAD per project",
				util.FormatThousands(float64(r.Min)), util.FormatThousands(float64(r.Max)))
		}
		if len(opps.SideIncomeIdeas) > 0 {
			ideas := opps.SideIncomeIdeas
			if len(ideas) > 5 {
				ideas = ideas[:5]
			}
			fmt.Fprintf(&b, "\n- Side income ideas: %s", strings.Join(ideas, ", "))
		}
		sections = append(sections, b.String())
	}

	if reality := p.context.FinancialReality; reality != nil {
		var b strings.Builder
		b.WriteString("Financial Reality in Morocco:")
		for _, line := range []string{reality.PaycheckToPaycheck, reality.FinancialStress, reality.EmergencySavings} {
			if line != "" {
				fmt.Fprintf(&b, "\n- %s", line)
			}
		}
		sections = append(sections, b.String())
	}

	return "MOROCCAN ECONOMIC CONTEXT:\n\n" + strings.Join(sections, "\n\n")
}

// SalaryComparison relates a user's salary to the loaded wage references,
// e.g. "Your salary of 9,000 MAD is 80% above the national average (5,000 MAD)
// and 3.0x the minimum wage (3,045 MAD)." Empty when no wage data is loaded.
func (p *Provider) SalaryComparison(salary float64) string {
	if p.context == nil || p.context.Salaries == nil {
		return ""
	}
	s := p.context.Salaries

	var comparisons []string
	if s.AverageSalary > 0 {
		diff := (salary - float64(s.AverageSalary)) / float64(s.AverageSalary) * 100
		direction := "above"
		if diff < 0 {
			direction = "below"
			diff = -diff
		}
		comparisons = append(comparisons, fmt.Sprintf("%.0f%% %s the national average (%s MAD)",
			diff, direction, util.FormatThousands(float64(s.AverageSalary))))
	}
	if s.MinimumWage > 0 {
		multiple := salary / float64(s.MinimumWage)
		comparisons = append(comparisons, fmt.Sprintf("%.1fx the minimum wage (%s MAD)",
			multiple, util.FormatThousands(float64(s.MinimumWage))))
	}

	if len(comparisons) == 0 {
		return ""
	}
	return fmt.Sprintf("Your salary of %s MAD is %s.", util.FormatThousands(salary), strings.Join(comparisons, " and "))
}

// compile-time check to ensure Provider satisfies the prompt assembly surface
var _ interfaces.RegionalContext = (*Provider)(nil)
