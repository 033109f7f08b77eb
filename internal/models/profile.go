package models

// MonthlyIncome 描述了用户的月度收入构成，单位为 MAD。
type MonthlyIncome struct {
	Salary    float64 `json:"salary"`    // 工资收入
	Freelance float64 `json:"freelance"` // 自由职业收入
	Other     float64 `json:"other"`     // 其他收入
}

// Debt 描述了一笔未清偿的债务。
type Debt struct {
	Name            string  `json:"name"`            // 债务名称
	RemainingAmount float64 `json:"remainingAmount"` // 剩余待还金额
	MonthlyPayment  float64 `json:"monthlyPayment"`  // 月供金额
}

// FinancialGoal 描述了一个理财目标。
type FinancialGoal struct {
	Name         string  `json:"name"`         // 目标名称
	TargetAmount float64 `json:"targetAmount"` // 目标金额
	SavedAmount  float64 `json:"savedAmount"`  // 已储蓄金额
}

// UserProfile 是用户理财档案的类型化表示。
// 档案由外部的 Finance Service 拥有，本服务只持有一份带 TTL 的缓存副本。
// Unavailable 为 true 时表示这是一份降级占位档案（获取失败时使用），
// 此时除 UserID 外的所有字段都没有意义，提示词渲染时必须明确标注"档案不可用"
// 而不是把缺失字段当作零值展示。
type UserProfile struct {
	UserID           string             `json:"userId"`
	MonthlyIncome    MonthlyIncome      `json:"monthlyIncome"`
	FixedExpenses    map[string]float64 `json:"fixedExpenses"`    // 固定支出，按类目
	VariableExpenses map[string]float64 `json:"variableExpenses"` // 可变支出，按类目
	Debts            []Debt             `json:"debts"`
	FinancialGoals   []FinancialGoal    `json:"financialGoals"`
	Unavailable      bool               `json:"-"`
}

// PlaceholderProfile 返回一份仅含 UserID 的占位档案，用于档案获取失败后的降级作答。
func PlaceholderProfile(userID string) *UserProfile {
	return &UserProfile{UserID: userID, Unavailable: true}
}

// TotalIncome 返回月度总收入。
func (p *UserProfile) TotalIncome() float64 {
	return p.MonthlyIncome.Salary + p.MonthlyIncome.Freelance + p.MonthlyIncome.Other
}

// TotalFixedExpenses 返回月度固定支出总额。
func (p *UserProfile) TotalFixedExpenses() float64 {
	var total float64
	for _, v := range p.FixedExpenses {
		total += v
	}
	return total
}

// TotalVariableExpenses 返回月度可变支出总额。
func (p *UserProfile) TotalVariableExpenses() float64 {
	var total float64
	for _, v := range p.VariableExpenses {
		total += v
	}
	return total
}

// TotalExpenses 返回月度支出总额（固定 + 可变）。
func (p *UserProfile) TotalExpenses() float64 {
	return p.TotalFixedExpenses() + p.TotalVariableExpenses()
}

// SavingsRate 返回储蓄率 (收入 - 支出) / 收入。收入为 0 时返回 0，避免除零。
func (p *UserProfile) SavingsRate() float64 {
	income := p.TotalIncome()
	if income <= 0 {
		return 0
	}
	return (income - p.TotalExpenses()) / income
}

// TotalDebt 返回所有债务的剩余待还总额。
func (p *UserProfile) TotalDebt() float64 {
	var total float64
	for _, d := range p.Debts {
		total += d.RemainingAmount
	}
	return total
}

// GoalNames 最多返回前 n 个理财目标的名称，用于提示词渲染。
func (p *UserProfile) GoalNames(n int) []string {
	if n > len(p.FinancialGoals) {
		n = len(p.FinancialGoals)
	}
	names := make([]string, 0, n)
	for _, g := range p.FinancialGoals[:n] {
		names = append(names, g.Name)
	}
	return names
}
