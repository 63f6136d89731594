package timeline

import (
	"hash/fnv"
	"math/rand"
)

// Seed derives a stable PRNG seed from the job-identifying strings. The same
// channel, topic and script title always reproduce the same beat structure,
// which makes allocation runs replayable when debugging a bad cut.
func Seed(channelID, topic, scriptTitle string) int64 {
	h := fnv.New64a()
	h.Write([]byte(channelID))
	h.Write([]byte{'|'})
	h.Write([]byte(topic))
	h.Write([]byte{'|'})
	h.Write([]byte(scriptTitle))
	return int64(h.Sum64())
}

// newRand returns a private generator for one allocation run. Never share
// these across jobs — concurrent pipelines must not perturb each other's
// sequences.
func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
