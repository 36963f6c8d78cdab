// internal/intake/qa/responder.go
package qa

import (
	"context"
	"regexp"
	"strings"

	"finance-intake/internal/common/logger"
	"finance-intake/internal/common/metrics"
)

// Answer is what a question turn produces.
type Answer struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// FallbackAnswer is used whenever neither the keyword topics nor the
// external responder can help. Never an error: Q&A failure always degrades
// to this.
var FallbackAnswer = Answer{
	Message:     "I'm not sure about that one. Would you like to talk to a sales representative?",
	Suggestions: []string{"Talk to sales", "Continue application"},
}

// Interrogative markers are matched as whole words so that answers like
// "showroom" or "Howard" don't trip the "how" marker.
var questionMarkerRegex = regexp.MustCompile(`(?i)\b(what|why|how|explain|tell me|can you|difference)\b`)

// IsQuestion applies the broad off-script heuristic: a reply containing "?"
// or any interrogative marker is treated as a question and bypasses the
// prompt machine entirely.
func IsQuestion(input string) bool {
	return strings.Contains(input, "?") || questionMarkerRegex.MatchString(input)
}

// topic is one keyworded canned answer; first match wins.
type topic struct {
	keywords []string
	answer   Answer
}

var topics = []topic{
	{
		keywords: []string{"income", "revenue", "earn"},
		answer: Answer{
			Message: "We use your stated income to pick a rate tier. Higher income unlocks promotional rates; for large orders a personal income figure is part of the guarantee.",
		},
	},
	{
		keywords: []string{"credit", "score"},
		answer: Answer{
			Message: "A credit score of 750 or above qualifies for our Preferred tier. We never run a hard pull during this conversation.",
		},
	},
	{
		keywords: []string{"financing", "leasing", "lease", "difference", "vs"},
		answer: Answer{
			Message: "Financing means you own the equipment at the end of the term and pay interest on the balance. Leasing has no down payment and a flat monthly rate, but the equipment returns to the lessor.",
			Suggestions: []string{"Compare both", "Continue application"},
		},
	},
	{
		keywords: []string{"apr", "rate", "interest"},
		answer: Answer{
			Message: "APR is the annual cost of the financing including interest. Your tier sets it: 0% promotional, 7.99% preferred, 10.99% standard, or 15.99%.",
		},
	},
	{
		keywords: []string{"payment", "monthly", "pay"},
		answer: Answer{
			Message: "Monthly payments amortize the financed balance over your chosen term. Leases use a flat rate instead, so the payment never changes.",
		},
	},
	{
		keywords: []string{"document", "upload", "license", "statement", "verify"},
		answer: Answer{
			Message: "We verify a business license and recent financial documents. Uploads are checked automatically; if one is rejected you can simply upload it again.",
		},
	},
	{
		keywords: []string{"process", "step", "long", "take", "next"},
		answer: Answer{
			Message: "The flow is: a few questions about your business, your offer selection, document upload, then signature. Most applicants finish in under ten minutes.",
		},
	},
}

// ExternalResponder is the opaque generic Q&A service. Failures must be
// treated as recoverable by callers.
type ExternalResponder interface {
	Ask(ctx context.Context, question string, context map[string]interface{}) (Answer, error)
}

// Responder answers off-script questions: fixed keyword rules first, then
// the external service, then the fixed fallback.
type Responder struct {
	external ExternalResponder
	cache    *AnswerCache
	logger   logger.Logger
}

func NewResponder(external ExternalResponder, cache *AnswerCache, log logger.Logger) *Responder {
	return &Responder{
		external: external,
		cache:    cache,
		logger:   log.WithFields(map[string]interface{}{"component": "qa"}),
	}
}

// Answer resolves a question. It never returns an error.
func (r *Responder) Answer(ctx context.Context, question string, qctx map[string]interface{}) Answer {
	lower := strings.ToLower(question)
	for _, t := range topics {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				return t.answer
			}
		}
	}

	if r.cache != nil {
		if cached, ok := r.cache.Get(ctx, question); ok {
			return cached
		}
	}

	if r.external != nil {
		answer, err := r.external.Ask(ctx, question, qctx)
		if err == nil {
			if r.cache != nil {
				r.cache.Put(ctx, question, answer)
			}
			return answer
		}
		r.logger.Warn("external responder failed, using fallback", map[string]interface{}{
			"error": err.Error(),
		})
	}

	metrics.ResponderFallbacks.Inc()
	return FallbackAnswer
}
