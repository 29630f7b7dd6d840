package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeComplexity() string {
	return `Measures the cyclomatic complexity of every function and method in the given paths.

USE WHEN:
- Identifying functions that are hard to test or maintain
- Finding refactoring candidates before code reviews
- Checking whether a change pushed a function over the team threshold

INTERPRETING RESULTS:
- Score = 1 + decision points (if, elif, for, while, try, except/catch, with, and/or)
- Nested functions are scored on their own and do not add to the enclosing score
- Score > threshold (default 10): flagged, consider splitting the function
- Score > 20: high risk, strong refactoring candidate
- Files listed under errors could not be parsed and were not scored

METRICS RETURNED:
- Per-function: file, qualified name, line, end_line, score, flagged
- Summary: count, mean, max, p50, p90, flagged count and list, errors`
}
