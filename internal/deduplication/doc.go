// Package deduplication decides whether an issue draft repeats an issue that is
// already open in the tracker.
//
// # Overview
//
// Before a draft is published it is compared against a window of the most
// recently created open issues. A draft is a duplicate of an existing issue when
// either check holds:
//
//  1. Title: after trimming and lowercasing, the existing title equals the draft
//     title or contains it. Containment is one-directional: a short existing
//     title never matches a longer draft title.
//  2. Body: the similarity of the two normalized bodies is strictly greater than
//     the threshold.
//
// The first matching issue ends the scan.
//
// # Failure Handling
//
// The detector fails open: when the tracker cannot list issues the draft is
// reported as not a duplicate and publication proceeds. A duplicate issue is
// preferred over a lost finding.
//
// # Configuration
//
//   - Window: 10 (most recent open issues compared)
//   - Threshold: 0.8 (exclusive body similarity bound)
//
// See DefaultConfig() and ConfigFromEnv().
//
// # Usage
//
//	detector := deduplication.NewDetector(tracker, deduplication.DefaultConfig())
//	decision, err := detector.CheckDuplicate(ctx, draft)
//	if err != nil {
//	    return fmt.Errorf("invalid draft: %w", err)
//	}
//	if decision.IsDuplicate {
//	    slog.Info("skipping duplicate", "existing", decision.Match.URL)
//	}
package deduplication
