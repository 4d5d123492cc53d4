package rules

import "github.com/sofmeright/coffeefreight/src/lint"

func lintLineAPI(line string) lint.LineAPI {
	return lint.LineAPI{LineNumber: 0, Lines: []string{line}}
}
