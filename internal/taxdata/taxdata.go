// Package taxdata 提供演示用的静态税务参考数据，
// 响应生成器从这里取内容插入模板。
package taxdata

type Deduction struct {
	ID           string
	Name         string
	Description  string
	MaxAmount    int // 0 表示无固定上限
	Category     string
	Eligibility  string
	Requirements []string
}

var CommonDeductions = []Deduction{
	{
		ID:          "std_deduction",
		Name:        "Standard Deduction",
		Description: "Fixed deduction amount based on filing status",
		MaxAmount:   13850,
		Category:    "standard",
		Eligibility: "All taxpayers",
	},
	{
		ID:           "charitable",
		Name:         "Charitable Contributions",
		Description:  "Donations to qualified charitable organizations",
		Category:     "itemized",
		Eligibility:  "Must itemize deductions",
		Requirements: []string{"Receipt for donations over $250", "Qualified organization"},
	},
	{
		ID:           "mortgage_interest",
		Name:         "Mortgage Interest",
		Description:  "Interest paid on home mortgage loans",
		MaxAmount:    750000,
		Category:     "itemized",
		Eligibility:  "Homeowners with mortgage",
		Requirements: []string{"Form 1098 from lender", "Primary or secondary residence"},
	},
	{
		ID:           "state_local_tax",
		Name:         "State and Local Taxes (SALT)",
		Description:  "State income tax, local taxes, property taxes",
		MaxAmount:    10000,
		Category:     "itemized",
		Eligibility:  "Taxpayers in states with income tax",
		Requirements: []string{"Tax receipts", "Property tax statements"},
	},
	{
		ID:           "medical_expenses",
		Name:         "Medical and Dental Expenses",
		Description:  "Unreimbursed medical expenses exceeding 7.5% of AGI",
		Category:     "itemized",
		Eligibility:  "High medical expenses relative to income",
		Requirements: []string{"Medical receipts", "Must exceed 7.5% AGI threshold"},
	},
	{
		ID:           "student_loan_interest",
		Name:         "Student Loan Interest",
		Description:  "Interest paid on qualified student loans",
		MaxAmount:    2500,
		Category:     "above_line",
		Eligibility:  "Income limits apply",
		Requirements: []string{"Form 1098-E from lender", "Qualified educational loan"},
	},
	{
		ID:           "home_office",
		Name:         "Home Office Deduction",
		Description:  "Business use of home for self-employed individuals",
		MaxAmount:    1500,
		Category:     "business",
		Eligibility:  "Self-employed or business owners",
		Requirements: []string{"Exclusive business use", "Regular business use", "Principal place of business"},
	},
	{
		ID:           "business_meals",
		Name:         "Business Meals",
		Description:  "Meals while conducting business",
		Category:     "business",
		Eligibility:  "Business owners and employees",
		Requirements: []string{"Business purpose", "Receipt", "50% deductible (100% for 2021-2022)"},
	},
}

type FilingStep struct {
	ID          string
	Title       string
	Description string
}

var FilingSteps = []FilingStep{
	{"gather_documents", "Gather Documents", "Collect W-2s, 1099s, receipts, and other tax documents"},
	{"choose_filing_status", "Determine Filing Status", "Single, Married Filing Jointly, Married Filing Separately, Head of Household, or Qualifying Widow(er)"},
	{"calculate_income", "Calculate Total Income", "Add up all sources of income including wages, interest, dividends, business income"},
	{"determine_deductions", "Choose Deductions", "Decide between standard deduction or itemizing deductions"},
	{"calculate_tax", "Calculate Tax Liability", "Apply tax rates to taxable income and subtract credits"},
	{"complete_forms", "Complete Tax Forms", "Fill out Form 1040 and any required schedules"},
	{"review_and_file", "Review and File", "Double-check everything and submit electronically or by mail"},
}

type BusinessConsideration struct {
	Category    string
	Description string
}

var BusinessConsiderations = []BusinessConsideration{
	{"Quarterly Payments", "Self-employed individuals must make estimated tax payments four times per year"},
	{"Self-Employment Tax", "15.3% tax on net self-employment earnings (Social Security and Medicare)"},
	{"Business Expenses", "Deduct ordinary and necessary business expenses like supplies, equipment, travel"},
	{"Business Structure", "Tax implications vary by entity type: sole proprietorship, LLC, S-Corp, C-Corp"},
	{"Record Keeping", "Maintain detailed records of all business income and expenses"},
	{"Home Office", "May deduct portion of home expenses if used exclusively for business"},
}

type Deadline struct {
	ID                string
	Name              string
	Date              string
	Description       string
	CanExtend         bool
	ExtensionDeadline string
}

// 按时间顺序排列
var Deadlines = []Deadline{
	{
		ID:                "individual_filing",
		Name:              "Individual Tax Return Filing",
		Date:              "April 15, 2025",
		Description:       "Deadline to file Form 1040 for 2024 tax year",
		CanExtend:         true,
		ExtensionDeadline: "October 15, 2025",
	},
	{
		ID:          "quarterly_q1",
		Name:        "Q1 Estimated Tax Payment",
		Date:        "April 15, 2025",
		Description: "First quarter estimated tax payment for 2025",
	},
	{
		ID:          "quarterly_q2",
		Name:        "Q2 Estimated Tax Payment",
		Date:        "June 16, 2025",
		Description: "Second quarter estimated tax payment for 2025",
	},
	{
		ID:          "quarterly_q3",
		Name:        "Q3 Estimated Tax Payment",
		Date:        "September 15, 2025",
		Description: "Third quarter estimated tax payment for 2025",
	},
	{
		ID:          "quarterly_q4",
		Name:        "Q4 Estimated Tax Payment",
		Date:        "January 15, 2026",
		Description: "Fourth quarter estimated tax payment for 2025",
	},
}

type RefundInfo struct {
	EfileDirectDeposit string
	EfileCheck         string
	PaperFiling        string
	Factors            []string
	DelayReasons       []string
}

var Refunds = RefundInfo{
	EfileDirectDeposit: "21 days",
	EfileCheck:         "21-28 days",
	PaperFiling:        "6-8 weeks",
	Factors: []string{
		"Filing method (electronic vs. paper)",
		"Refund method (direct deposit vs. check)",
		"Accuracy of return information",
		"Need for additional review or verification",
		"Claiming Earned Income Tax Credit or Additional Child Tax Credit",
		"IRS processing volumes during filing season",
	},
	DelayReasons: []string{
		"Incomplete or incorrect information",
		"Identity verification required",
		"Amended return processing",
		"Tax law changes requiring manual review",
		"Suspected fraud or identity theft",
	},
}

type Scenario struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	KeyPoints   []string `json:"key_points"`
}

var Scenarios = []Scenario{
	{
		ID:          "first_time_filer",
		Title:       "First-Time Tax Filer",
		Description: "Guidance for someone filing taxes for the first time",
		KeyPoints:   []string{"Understand filing requirements", "Gather necessary documents", "Choose appropriate filing method", "Understand basic tax concepts"},
	},
	{
		ID:          "self_employed",
		Title:       "Self-Employed Individual",
		Description: "Tax considerations for freelancers and business owners",
		KeyPoints:   []string{"Quarterly estimated payments", "Business expense tracking", "Self-employment tax", "Home office deduction"},
	},
	{
		ID:          "recent_graduate",
		Title:       "Recent College Graduate",
		Description: "Tax implications for new graduates with student loans",
		KeyPoints:   []string{"Student loan interest deduction", "Job search expense deductions", "Moving expense considerations", "Education credits"},
	},
	{
		ID:          "homeowner",
		Title:       "New Homeowner",
		Description: "Tax benefits and obligations for homeowners",
		KeyPoints:   []string{"Mortgage interest deduction", "Property tax deduction", "PMI deduction eligibility", "Home office considerations"},
	},
	{
		ID:          "retiree",
		Title:       "Retiree",
		Description: "Tax considerations for retirement income",
		KeyPoints:   []string{"Social Security taxation", "Retirement account distributions", "Required minimum distributions", "Medicare premium considerations"},
	},
}

type FAQ struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

var CommonQuestions = []FAQ{
	{
		ID:       "when_to_file",
		Question: "When should I file my taxes?",
		Answer:   "The deadline for filing your 2024 tax return is April 15, 2025. However, you can file as early as late January once the IRS begins accepting returns.",
		Category: "filing",
	},
	{
		ID:       "need_to_file",
		Question: "Do I need to file a tax return?",
		Answer:   "Generally, you need to file if your income exceeds certain thresholds based on your filing status and age. For 2024, single filers under 65 need to file if income exceeds $13,850.",
		Category: "filing",
	},
	{
		ID:       "standard_vs_itemized",
		Question: "Should I take the standard deduction or itemize?",
		Answer:   "Take the standard deduction if it's larger than your itemized deductions. For 2024, the standard deduction is $13,850 for single filers and $27,700 for married filing jointly.",
		Category: "deductions",
	},
	{
		ID:       "refund_timing",
		Question: "When will I get my tax refund?",
		Answer:   "Most refunds are issued within 21 days of electronic filing with direct deposit. Paper returns and refund checks take longer - typically 6-8 weeks.",
		Category: "refunds",
	},
}
