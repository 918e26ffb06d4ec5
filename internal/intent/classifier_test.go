package intent

import "testing"

func TestClassifyTopics(t *testing.T) {
	cases := []struct {
		text string
		want Topic
	}{
		{"What deductions can I claim?", TopicDeductions},
		{"Can I write off my home office?", TopicDeductions},
		{"Are charitable donations deductible?", TopicDeductions},
		{"How do I file my taxes?", TopicFiling},
		{"Where do I submit form 1040?", TopicFiling},
		{"Business tax questions", TopicBusiness},
		{"I'm a freelance contractor", TopicBusiness},
		{"What is the tax deadline this year?", TopicDeadline},
		{"Is there a penalty for late payment?", TopicDeadline},
		{"Where is my refund?", TopicRefund},
		{"My direct deposit is delayed", TopicRefund},
		{"hello", TopicGreeting},
		{"hey, can you assist me", TopicGreeting},
	}

	for _, tc := range cases {
		got, ok := Classify(tc.text)
		if !ok {
			t.Errorf("Classify(%q): no match, want %s", tc.text, tc.want)
			continue
		}
		if got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	got, ok := Classify("WHAT DEDUCTIONS CAN I CLAIM")
	if !ok || got != TopicDeductions {
		t.Fatalf("Classify uppercase = %s (ok=%v), want %s", got, ok, TopicDeductions)
	}
}

// 一句话命中多个类别时，按类别检查顺序裁决
func TestClassifyOrderResolvesConflicts(t *testing.T) {
	// "claim" (deductions) 先于 "refund"
	got, ok := Classify("can I claim my refund")
	if !ok || got != TopicDeductions {
		t.Fatalf("Classify conflict = %s (ok=%v), want %s", got, ok, TopicDeductions)
	}

	// "when" (deadline) 先于 "refund"
	got, ok = Classify("when will my refund arrive")
	if !ok || got != TopicDeadline {
		t.Fatalf("Classify conflict = %s (ok=%v), want %s", got, ok, TopicDeadline)
	}
}

func TestClassifyMiss(t *testing.T) {
	got, ok := Classify("the weather is nice today")
	if ok {
		t.Fatalf("Classify unrelated text matched %s, want miss", got)
	}
	if got != "" {
		t.Fatalf("Classify miss returned topic %q, want empty", got)
	}
}

func TestTopicsOrder(t *testing.T) {
	topics := Topics()
	want := []Topic{TopicDeductions, TopicFiling, TopicBusiness, TopicDeadline, TopicRefund, TopicGreeting}
	if len(topics) != len(want) {
		t.Fatalf("Topics() returned %d topics, want %d", len(topics), len(want))
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Errorf("Topics()[%d] = %s, want %s", i, topics[i], want[i])
		}
	}
}
