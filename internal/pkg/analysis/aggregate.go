// Package analysis derives frame-level statistics and engagement estimates
// from canonical face lists. Everything here is pure computation over
// already-normalized data.
package analysis

import (
	"math"

	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/face_model"
)

// Summarize computes the demographic and emotion statistics for one frame.
// A frame with no faces yields the zero value with every field nil; absent
// data is never reported as zero.
func Summarize(faces []face_model.DetectedFace) (stats face_model.AggregateStats) {
	if len(faces) == 0 {
		return stats
	}

	stats.AverageAge = averageAge(faces)
	stats.MalePercentage, stats.FemalePercentage = genderSplit(faces)
	stats.PrimaryEmotion, stats.PrimaryEmotionPercentage = dominantEmotion(faces)

	return stats
}

// averageAge is the mean of the age range midpoints over the faces that
// carry an age range.
func averageAge(faces []face_model.DetectedFace) *float64 {
	var sum float64
	var n int

	for _, f := range faces {
		if f.AgeRange == nil {
			continue
		}
		sum += float64(f.AgeRange.Low+f.AgeRange.High) / 2
		n++
	}

	if n == 0 {
		return nil
	}

	avg := sum / float64(n)
	return &avg
}

// genderSplit computes percentages over the faces with a determinable
// gender. Each side is rounded independently, so the two values need not sum
// to exactly 100.
func genderSplit(faces []face_model.DetectedFace) (male, female *int) {
	var maleCount, femaleCount int

	for _, f := range faces {
		if f.Gender == nil {
			continue
		}
		switch f.Gender.Value {
		case face_model.GenderMale:
			maleCount++
		case face_model.GenderFemale:
			femaleCount++
		}
	}

	total := maleCount + femaleCount
	if total == 0 {
		return nil, nil
	}

	m := roundPct(maleCount, total)
	f := roundPct(femaleCount, total)
	return &m, &f
}

// dominantEmotion tallies each face's strongest emotion and returns the most
// common one. Tallied types keep first-observed order so ties resolve
// deterministically, and the percentage denominator is the full face count,
// not only the faces with emotion data.
func dominantEmotion(faces []face_model.DetectedFace) (*face_model.EmotionType, *int) {
	type tally struct {
		emotion face_model.EmotionType
		count   int
	}

	var tallies []tally
	index := map[face_model.EmotionType]int{}

	for _, f := range faces {
		top, ok := topEmotion(f.Emotions)
		if !ok {
			continue
		}

		i, seen := index[top]
		if !seen {
			i = len(tallies)
			index[top] = i
			tallies = append(tallies, tally{emotion: top})
		}
		tallies[i].count++
	}

	if len(tallies) == 0 {
		return nil, nil
	}

	best := tallies[0]
	for _, tl := range tallies[1:] {
		if tl.count > best.count {
			best = tl
		}
	}

	pct := roundPct(best.count, len(faces))
	return &best.emotion, &pct
}

// topEmotion returns the highest-confidence entry; the first entry wins
// ties.
func topEmotion(emotions []face_model.Emotion) (face_model.EmotionType, bool) {
	if len(emotions) == 0 {
		return "", false
	}

	top := emotions[0]
	for _, e := range emotions[1:] {
		if e.Confidence > top.Confidence {
			top = e
		}
	}

	return top.Type, true
}

func roundPct(part, total int) int {
	return int(math.Round(float64(part) / float64(total) * 100))
}
