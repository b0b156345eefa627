package domain

import "fmt"

// maxDrawsPerCode bounds how many tokens IssueVoteCodes may draw per code
// before it gives up on a generator that keeps colliding.
const maxDrawsPerCode = 4

// IssueVoteCodes draws count distinct codes from next, in draw order. The
// order is stable so printed and exported sheets list codes the same way.
func IssueVoteCodes(count int, next func() (string, error)) ([]string, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative code count %d", ErrInvalidPoll, count)
	}

	codes := make([]string, 0, count)
	seen := make(map[string]struct{}, count)

	maxDraws := (count + 1) * maxDrawsPerCode
	for draws := 0; len(codes) < count; draws++ {
		if draws >= maxDraws {
			return nil, fmt.Errorf("%w: got %d of %d after %d draws", ErrCodeSpaceExhausted, len(codes), count, draws)
		}

		code, err := next()
		if err != nil {
			return nil, fmt.Errorf("failed to generate vote code: %w", err)
		}
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}

		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	return codes, nil
}
