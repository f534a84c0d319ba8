package weather

import "context"

// FirstAvailable tries candidates in order, at most limit of them, and
// returns the first value try reports as ok. Attempts are sequential and the
// scan stops at the first success. A limit <= 0 means every candidate.
// The only error returned is ctx's, when it ends the scan early.
func FirstAvailable[T any](ctx context.Context, candidates []string, limit int, try func(context.Context, string) (T, bool)) (T, bool, error) {
	var zero T

	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}

	for _, c := range candidates[:limit] {
		if err := ctx.Err(); err != nil {
			return zero, false, err
		}
		if v, ok := try(ctx, c); ok {
			return v, true, nil
		}
	}
	return zero, false, nil
}

// FirstHumidity scans stations with probe using FirstAvailable.
func FirstHumidity(ctx context.Context, probe StationProbe, stationIDs []string, limit int) (*float64, error) {
	v, ok, err := FirstAvailable(ctx, stationIDs, limit, probe.TryLatestHumidity)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}
