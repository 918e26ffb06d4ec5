package intent

import "regexp"

// Topic 税务问题类别
type Topic string

const (
	TopicDeductions Topic = "deductions"
	TopicFiling     Topic = "filing"
	TopicBusiness   Topic = "business"
	TopicDeadline   Topic = "deadline"
	TopicRefund     Topic = "refund"
	TopicGreeting   Topic = "greeting"
	TopicGeneral    Topic = "general"
)

type topicPatterns struct {
	topic    Topic
	patterns []*regexp.Regexp
}

// 类别按固定顺序检查，排在前面的类别优先命中。
// 同一句话可能同时匹配多个类别的模式（如 "claim my refund"），
// 顺序即冲突裁决规则，不能调整。
var ordered = []topicPatterns{
	{TopicDeductions, compileAll(
		`deduction`, `write off`, `claim`, `tax break`, `expense`,
		`charitable`, `donation`, `medical`, `mortgage`, `student loan`,
	)},
	{TopicFiling, compileAll(
		`file`, `filing`, `return`, `form`, `1040`, `w-2`, `w2`,
		`how to`, `submit`, `electronic`, `efile`, `paper`,
	)},
	{TopicBusiness, compileAll(
		`business`, `self.employed`, `freelance`, `contractor`, `llc`,
		`corporation`, `schedule c`, `quarterly`, `estimated`,
	)},
	{TopicDeadline, compileAll(
		`deadline`, `due date`, `when`, `april`, `extension`,
		`late`, `penalty`, `calendar`,
	)},
	{TopicRefund, compileAll(
		`refund`, `money back`, `return`, `irs`, `deposit`,
		`check`, `delayed`, `processing`, `status`,
	)},
	{TopicGreeting, compileAll(
		`hello`, `hi`, `hey`, `start`, `help`, `assist`,
	)},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		patterns[i] = regexp.MustCompile(`(?i)` + expr)
	}
	return patterns
}

// Classify 对输入文本做意图识别，返回第一个命中的类别。
// 无副作用；未命中时返回 ok=false，调用方回退到 general。
func Classify(text string) (Topic, bool) {
	for _, tp := range ordered {
		for _, pattern := range tp.patterns {
			if pattern.MatchString(text) {
				return tp.topic, true
			}
		}
	}
	return "", false
}

// Topics 返回全部可识别类别（按检查顺序）
func Topics() []Topic {
	topics := make([]Topic, len(ordered))
	for i, tp := range ordered {
		topics[i] = tp.topic
	}
	return topics
}
