package responder

import "taxbuddy-backend/internal/intent"

// 每个类别的开场模板池，生成时随机取一条
var templates = map[intent.Topic][]string{
	intent.TopicGreeting: {
		"Hello! I'm here to help with your tax questions.",
		"Hi there! How can I assist you with your taxes today?",
		"Welcome! I'm ready to help you navigate tax matters.",
	},
	intent.TopicDeductions: {
		"Great question about deductions! Here are some common ones you might be eligible for:",
		"Let me help you understand tax deductions that could save you money:",
		"Tax deductions can significantly reduce your taxable income. Here's what you should know:",
	},
	intent.TopicFiling: {
		"Filing your taxes doesn't have to be complicated. Here's a step-by-step guide:",
		"Let me walk you through the tax filing process:",
		"I'll help you understand how to file your taxes properly:",
	},
	intent.TopicBusiness: {
		"Business taxes have special considerations. Here's what you need to know:",
		"As a business owner, you have unique tax obligations and opportunities:",
		"Let me explain the key aspects of business taxation:",
	},
	intent.TopicDeadline: {
		"Tax deadlines are crucial to remember. Here are the important dates:",
		"Missing tax deadlines can be costly. Let me give you the key dates:",
		"Here's your tax calendar with all the important deadlines:",
	},
	intent.TopicRefund: {
		"Wondering about your tax refund? Here's what affects timing:",
		"Tax refunds depend on several factors. Let me explain:",
		"Here's what you need to know about tax refund processing:",
	},
}

var fallbackTemplates = []string{
	"That's an interesting tax question. Let me provide some general guidance:",
	"I'll do my best to help with that tax matter:",
	"Tax situations can be complex. Here's what I can tell you:",
}

// 各类别的固定置信度，人为设定的展示值，不是模型输出
const (
	confidenceFiling     = 0.95
	confidenceDeadline   = 0.95
	confidenceDeductions = 0.9
	confidenceRefund     = 0.9
	confidenceBusiness   = 0.85
	confidenceFallback   = 0.7
)
