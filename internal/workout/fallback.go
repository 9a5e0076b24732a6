package workout

import "github.com/hperssn/microdesk/internal/domain"

// Fallback returns the built-in workouts used when no definitions are found
// on disk.
func Fallback() []domain.Workout {
	return []domain.Workout{
		{
			ID:                 "neck_5min_v1",
			Name:               "Neck and shoulders (5 min)",
			DefaultRestSeconds: 10,
			Exercises: []domain.Exercise{
				{Name: "Neck stretch forward/back", DurationSeconds: 45},
				{Name: "Shoulder rolls", DurationSeconds: 45},
				{Name: "Neck side to side", DurationSeconds: 45},
				{Name: "Wrist circles", DurationSeconds: 45},
				{Name: "Sit to stand", DurationSeconds: 30},
			},
		},
		{
			ID:                 "shoulders_4min_v1",
			Name:               "Shoulder mobility (4 min)",
			DefaultRestSeconds: 10,
			Exercises: []domain.Exercise{
				{Name: "Shoulder shrugs", DurationSeconds: 40},
				{Name: "Arm circles", DurationSeconds: 40},
				{Name: "Scapular retraction", DurationSeconds: 40},
				{Name: "Neck rolls", DurationSeconds: 40},
			},
		},
		{
			ID:                 "wrists_3min_v1",
			Name:               "Wrists (3 min)",
			DefaultRestSeconds: 10,
			Exercises: []domain.Exercise{
				{Name: "Flexion/extension", DurationSeconds: 30},
				{Name: "Pronation/supination", DurationSeconds: 30},
				{Name: "Finger stretch", DurationSeconds: 30},
			},
		},
		{
			ID:                 "core_4min_v1",
			Name:               "Core at the desk (4 min)",
			DefaultRestSeconds: 10,
			Exercises: []domain.Exercise{
				{Name: "Seated knee raises", DurationSeconds: 40},
				{Name: "Isometric ab brace", DurationSeconds: 40},
				{Name: "Seated rotations", DurationSeconds: 40},
				{Name: "Seated calf raises", DurationSeconds: 40},
			},
		},
	}
}
