package asidecache

// Outcome is how a single GetOrSet call was served.
type Outcome uint8

const (
	OutcomeBypassed Outcome = iota + 1
	OutcomeHit
	OutcomeMissLoaded
	OutcomeStaleServed
	OutcomeLoaderFallbackOnInvalidResult
	OutcomeLoaderFallbackOnStoreFailure
)

var outcomeNames = [...]string{
	OutcomeBypassed:                      "bypassed",
	OutcomeHit:                           "hit",
	OutcomeMissLoaded:                    "miss_loaded",
	OutcomeStaleServed:                   "stale_served",
	OutcomeLoaderFallbackOnInvalidResult: "fallback_invalid_result",
	OutcomeLoaderFallbackOnStoreFailure:  "fallback_store_failure",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) && outcomeNames[o] != "" {
		return outcomeNames[o]
	}
	return "unknown"
}

// Outcomes lists every outcome, e.g. for pre-registering metric labels.
func Outcomes() []Outcome {
	return []Outcome{
		OutcomeBypassed,
		OutcomeHit,
		OutcomeMissLoaded,
		OutcomeStaleServed,
		OutcomeLoaderFallbackOnInvalidResult,
		OutcomeLoaderFallbackOnStoreFailure,
	}
}
