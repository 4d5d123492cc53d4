package filter

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/sofmeright/coffeefreight/src/config"
	"github.com/sofmeright/coffeefreight/src/report"
)

// entry is the persisted value for one lintable file. The report and count
// are kept beside the artifact so a cache hit can replay them into the build
// error log.
type entry struct {
	Artifact string `json:"artifact"`
	Report   string `json:"report,omitempty"`
	Findings int    `json:"findings"`
}

// fingerprint hashes everything that shapes an artifact apart from the file
// itself: build options, rule configuration, the registered rule set and the
// emitter's formatting identity. encoding/json sorts map keys, so equal
// configurations always hash equally.
func fingerprint(opts config.Options, rules config.RuleConfig, ruleNames []string, emitter *report.Emitter) (string, error) {
	h := sha256.New()

	o, err := json.Marshal(opts)
	if err != nil {
		return "", err
	}
	h.Write(o)
	h.Write([]byte{0})

	if rules != nil {
		r, err := json.Marshal(rules)
		if err != nil {
			return "", err
		}
		h.Write(r)
	}
	h.Write([]byte{0})

	h.Write([]byte(strings.Join(ruleNames, ",")))
	h.Write([]byte{0})
	h.Write([]byte(emitter.Identity()))

	return hex.EncodeToString(h.Sum(nil)), nil
}

// cacheKey combines the build fingerprint with one file's content and path.
// The path is part of the key because it is embedded in the artifact.
func cacheKey(fp string, relPath string, content []byte) string {
	h := sha256.New()
	h.Write(content)
	h.Write([]byte{0})
	h.Write([]byte(relPath))
	return fp + hex.EncodeToString(h.Sum(nil))
}
