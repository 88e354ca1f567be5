package runner

import "fmt"

// Summary aggregates the results of a run. Results are in submission order and only include
// tests that actually ran.
type Summary struct {
	Passed  int
	Failed  int
	Results []Result
}

// Total returns the number of tests that ran.
func (s Summary) Total() int {
	return s.Passed + s.Failed
}

// OK reports whether every test that ran passed.
func (s Summary) OK() bool {
	return s.Failed == 0
}

// String renders the summary line, e.g. "3 tests passed, 1 test failed".
func (s Summary) String() string {
	return fmt.Sprintf("%s passed, %s failed", plural(s.Passed), plural(s.Failed))
}

func plural(n int) string {
	if n == 1 {
		return "1 test"
	}
	return fmt.Sprintf("%d tests", n)
}
