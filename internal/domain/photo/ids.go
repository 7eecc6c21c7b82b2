package photo

import (
	"github.com/google/uuid"
)

const (
	IDStrategyDeterministic = "deterministic"
	IDStrategyRandom        = "random"
)

// idNamespace scopes the name-based photo ids.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://jan.ai/lifelog/photos"))

// IDFunc derives a photo_id for the object at sourceKey.
type IDFunc func(sourceKey string) string

// DeterministicID returns a UUID v5 of sourceKey, so reprocessing the same upload yields the same id.
func DeterministicID(sourceKey string) string {
	return uuid.NewSHA1(idNamespace, []byte(sourceKey)).String()
}

// RandomID returns a fresh UUID v4 on every call.
func RandomID(string) string {
	return uuid.NewString()
}

// IDFuncFor maps a configured strategy to its generator. Name-based ids are opt-in; anything else uses RandomID.
func IDFuncFor(strategy string) IDFunc {
	if strategy == IDStrategyDeterministic {
		return DeterministicID
	}
	return RandomID
}
