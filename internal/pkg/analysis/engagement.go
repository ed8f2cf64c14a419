package analysis

import (
	"math"

	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/face_model"
)

// engagementBaseline is the per-face starting score before any signal
// contribution is applied.
const engagementBaseline = 40.0

// ScoreEngagement computes the frame engagement score and the estimated
// attention time. It returns nil for a frame with no faces: an empty room is
// not the same as a disengaged one.
func ScoreEngagement(faces []face_model.DetectedFace) *face_model.Engagement {
	if len(faces) == 0 {
		return nil
	}

	var scoreSum, attentionSum float64
	for _, f := range faces {
		scoreSum += faceScore(f)
		attentionSum += faceAttention(f)
	}

	n := float64(len(faces))
	return &face_model.Engagement{
		Score:         int(math.Round(scoreSum / n)),
		AttentionTime: math.Round(attentionSum/n*10) / 10,
	}
}

// faceScore accumulates the signed signal contributions on top of the
// baseline. Missing attributes contribute nothing; the result is clamped to
// [0, 100] after all contributions.
func faceScore(f face_model.DetectedFace) float64 {
	score := engagementBaseline

	if f.EyesOpen != nil {
		if f.EyesOpen.Value {
			score += 15 * f.EyesOpen.Confidence / 100
		} else {
			score -= 20
		}
	}

	if f.Smile != nil && f.Smile.Value {
		score += 12 * f.Smile.Confidence / 100
	}

	if f.MouthOpen != nil && f.MouthOpen.Value {
		score += 5 * f.MouthOpen.Confidence / 100
	}

	if f.Pose != nil {
		score += poseScore(*f.Pose)
	}

	primary, secondary := rankedEmotions(f.Emotions)
	if primary != nil {
		score += primaryEmotionScore(*primary)
	}
	if secondary != nil && secondary.Confidence > 15 {
		score += secondaryEmotionScore(*secondary)
	}

	return clamp(score, 0, 100)
}

// poseScore rewards a head facing the camera and penalizes one turned away.
func poseScore(p face_model.Pose) float64 {
	var score float64

	yaw := math.Abs(p.Yaw)
	switch {
	case yaw < 10:
		score += 15
	case yaw < 25:
		score += 8
	case yaw > 45:
		score -= 15
	}

	pitch := math.Abs(p.Pitch)
	switch {
	case pitch < 15:
		score += 5
	case pitch > 30:
		score -= 10
	}

	if math.Abs(p.Roll) > 30 {
		score -= 5
	}

	return score
}

func primaryEmotionScore(e face_model.Emotion) float64 {
	w := e.Confidence / 100
	switch e.Type {
	case face_model.EmotionHappy:
		return 20 * w
	case face_model.EmotionSurprised:
		return 15 * w
	case face_model.EmotionCalm:
		return 10 * w
	case face_model.EmotionSad:
		return 5 * w
	case face_model.EmotionAngry, face_model.EmotionDisgusted, face_model.EmotionFear:
		return -10 * w
	}
	return 0
}

func secondaryEmotionScore(e face_model.Emotion) float64 {
	w := e.Confidence / 100
	switch e.Type {
	case face_model.EmotionHappy, face_model.EmotionSurprised:
		return 5 * w
	case face_model.EmotionAngry, face_model.EmotionDisgusted, face_model.EmotionFear:
		return -5 * w
	}
	return 0
}

// rankedEmotions returns the two highest-confidence entries. Earlier entries
// win ties, matching the aggregation tie rule.
func rankedEmotions(emotions []face_model.Emotion) (primary, secondary *face_model.Emotion) {
	for i := range emotions {
		e := emotions[i]
		switch {
		case primary == nil || e.Confidence > primary.Confidence:
			secondary = primary
			primary = &e
		case secondary == nil || e.Confidence > secondary.Confidence:
			secondary = &e
		}
	}
	return primary, secondary
}

// faceAttention estimates seconds of sustained attention within a typical
// capture interval, clamped to [0, 5].
func faceAttention(f face_model.DetectedFace) float64 {
	var t float64

	if f.EyesOpen != nil && f.EyesOpen.Value {
		t += 2.0
	}

	primary, _ := rankedEmotions(f.Emotions)
	if primary != nil {
		w := primary.Confidence / 100
		switch primary.Type {
		case face_model.EmotionHappy, face_model.EmotionSurprised:
			t += 1.5 * w
		case face_model.EmotionCalm:
			t += 1.0 * w
		}
	}

	if f.Pose != nil {
		t += math.Max(0, 1-math.Abs(f.Pose.Yaw)/45) * 1.5
	}

	return clamp(t, 0, 5)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
