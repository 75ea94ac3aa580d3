package chat

import "strings"

const maxSuggestedVideos = 3

type VideoRecord struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Duration string `json:"duration"`
}

// videoLookup maps a keyword found in the trainer's reply to a video
// suggestion. The scan is case-insensitive over the reply text.
var videoLookup = []struct {
	keyword string
	video   VideoRecord
}{
	{"squat", VideoRecord{Title: "Perfect Squat Form", URL: "https://videos.fitbot.app/squat-form", Duration: "6:12"}},
	{"push up", VideoRecord{Title: "Push Up Progressions", URL: "https://videos.fitbot.app/push-up-progressions", Duration: "8:45"}},
	{"plank", VideoRecord{Title: "Plank Variations for Core Strength", URL: "https://videos.fitbot.app/plank-variations", Duration: "5:30"}},
	{"stretch", VideoRecord{Title: "Full Body Stretch Routine", URL: "https://videos.fitbot.app/full-body-stretch", Duration: "12:00"}},
	{"cardio", VideoRecord{Title: "Low Impact Cardio at Home", URL: "https://videos.fitbot.app/low-impact-cardio", Duration: "20:15"}},
	{"hiit", VideoRecord{Title: "15 Minute HIIT Burner", URL: "https://videos.fitbot.app/hiit-burner", Duration: "15:00"}},
	{"deadlift", VideoRecord{Title: "Deadlift Basics", URL: "https://videos.fitbot.app/deadlift-basics", Duration: "9:20"}},
	{"warm up", VideoRecord{Title: "5 Minute Dynamic Warm Up", URL: "https://videos.fitbot.app/dynamic-warm-up", Duration: "5:05"}},
	{"recovery", VideoRecord{Title: "Active Recovery Day Guide", URL: "https://videos.fitbot.app/active-recovery", Duration: "10:40"}},
}

// suggestVideos scans the reply for known keywords and returns up to
// three matching videos, in lookup-table order.
func suggestVideos(reply string) []VideoRecord {
	lowered := strings.ToLower(reply)
	videos := make([]VideoRecord, 0, maxSuggestedVideos)
	for _, entry := range videoLookup {
		if strings.Contains(lowered, entry.keyword) {
			videos = append(videos, entry.video)
			if len(videos) == maxSuggestedVideos {
				break
			}
		}
	}
	return videos
}
