package serp

import (
	"context"
	"fmt"
	"strings"

	"serpscout/internal/browser"

	"github.com/rs/zerolog"
)

// Outcome is what one tier produced.
type Outcome struct {
	Status  Status
	Results []Result
	// Err explains an empty outcome. It is informational only.
	Err error
}

// Ok wraps results; an empty slice is reported as Empty.
func Ok(results []Result) Outcome {
	if len(results) == 0 {
		return Outcome{Status: StatusEmpty}
	}
	return Outcome{Status: StatusOK, Results: results}
}

// Empty reports a tier that produced nothing, optionally because of err.
func Empty(err error) Outcome {
	return Outcome{Status: StatusEmpty, Err: err}
}

// Blocked reports a tier that hit an anti-automation challenge.
func Blocked() Outcome {
	return Outcome{Status: StatusBlocked}
}

// Tier is one attempt strategy. Run returns a non-nil error only for failures
// that must stop escalation, such as a missing browser; everything else is
// folded into the Outcome.
type Tier struct {
	Name    string
	Profile browser.Profile
	Run     func(ctx context.Context) (Outcome, error)
}

// Escalate runs tiers in order until one yields results. A tier that panics
// counts as empty. The returned error is the first fatal tier error.
func Escalate(ctx context.Context, query string, tiers []Tier) (Attempt, error) {
	log := zerolog.Ctx(ctx)
	att := Attempt{Query: query, Status: StatusEmpty}
	for _, t := range tiers {
		if err := ctx.Err(); err != nil {
			return att, err
		}
		out, err := runTier(ctx, t)
		if err != nil {
			return att, fmt.Errorf("tier %s: %w", t.Name, err)
		}
		att.Profile = t.Profile
		att.Tier = t.Name
		ev := log.Debug().Str("tier", t.Name).Str("status", out.Status.String()).Int("results", len(out.Results))
		if out.Err != nil {
			ev = ev.AnErr("cause", out.Err)
		}
		ev.Msg("tier finished")

		switch out.Status {
		case StatusOK:
			att.Results = out.Results
			att.Status = StatusOK
			return att, nil
		case StatusBlocked:
			att.Status = StatusBlocked
		}
	}
	return att, nil
}

func runTier(ctx context.Context, t Tier) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = Empty(fmt.Errorf("tier panicked: %v", r)), nil
		}
	}()
	if t.Run == nil {
		return Empty(nil), nil
	}
	out, err = t.Run(ctx)
	if err == nil && out.Status == StatusOK && len(out.Results) == 0 {
		out.Status = StatusEmpty
	}
	return out, err
}

// Plan is a full escalation cycle for one query.
type Plan struct {
	Tiers []Tier
	// Supplement tops up a short result set from the last loaded page.
	Supplement func(ctx context.Context, have []Result) []Result
	// Diagnose runs when the cycle ends with nothing and reports whether the
	// page was a challenge.
	Diagnose func(ctx context.Context) Status
}

// Run escalates through the plan's tiers, supplements the winner when it is
// short, diagnoses a total miss and caps the result set at maxResults.
func Run(ctx context.Context, query string, maxResults int, plan Plan) (Attempt, error) {
	att, err := Escalate(ctx, query, plan.Tiers)
	if err != nil {
		return att, err
	}

	if plan.Supplement != nil && len(att.Results) < maxResults {
		att.Results = safeSupplement(ctx, plan.Supplement, att.Results)
	}

	if len(att.Results) == 0 {
		att.Results = []Result{}
		if plan.Diagnose != nil {
			if st := safeDiagnose(ctx, plan.Diagnose); st == StatusBlocked {
				att.Status = StatusBlocked
			}
		}
		if att.Status != StatusBlocked {
			att.Status = StatusEmpty
		}
		return att, nil
	}

	att.Results = Truncate(att.Results, maxResults)
	att.Status = StatusOK
	return att, nil
}

func safeSupplement(ctx context.Context, fn func(context.Context, []Result) []Result, have []Result) (out []Result) {
	defer func() {
		if r := recover(); r != nil {
			zerolog.Ctx(ctx).Debug().Interface("panic", r).Msg("supplement failed")
			out = have
		}
	}()
	return fn(ctx, have)
}

func safeDiagnose(ctx context.Context, fn func(context.Context) Status) (st Status) {
	defer func() {
		if r := recover(); r != nil {
			st = StatusEmpty
		}
	}()
	return fn(ctx)
}

// DetectChallenge reports whether page text looks like an anti-automation
// challenge.
func DetectChallenge(pageText string, markers []string) bool {
	lower := strings.ToLower(pageText)
	for _, m := range markers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
