package models

import "github.com/lib/pq"

// DefaultCreatorRoster returns the starter roster used to seed an empty
// creators table on first boot.
func DefaultCreatorRoster() []*Creator {
	return []*Creator{
		{
			Name:           "TechReviewer_Sarah",
			Platform:       "YouTube",
			Handle:         "@techreviewer_sarah",
			Niche:          "tech",
			FollowerCount:  500_000,
			EngagementRate: 4.2,
			TypicalRate:    4500,
			Phone:          "+918806859890",
			Email:          "sarah@creators.example.com",
			Languages:      pq.StringArray{"English", "Hindi"},
			ContentTypes:   pq.StringArray{"smartphone_reviews", "gadget_unboxing", "tech_tutorials"},
			Bio:            "Smartphone and gadget reviewer covering unboxings and in-depth tech tutorials",
		},
		{
			Name:           "FitnessGuru_Mike",
			Platform:       "Instagram",
			Handle:         "@fitnessguru_mike",
			Niche:          "fitness",
			FollowerCount:  300_000,
			EngagementRate: 5.8,
			TypicalRate:    3200,
			Phone:          "+918806859890",
			Email:          "mike@creators.example.com",
			Languages:      pq.StringArray{"English", "Spanish"},
			ContentTypes:   pq.StringArray{"workout_routines", "supplement_reviews", "fitness_gear"},
			Bio:            "Workout routines, supplement reviews, and fitness gear for a high-energy audience",
		},
		{
			Name:           "BeautyInfluencer_Priya",
			Platform:       "TikTok",
			Handle:         "@beautyinfluencer_priya",
			Niche:          "beauty",
			FollowerCount:  1_000_000,
			EngagementRate: 7.2,
			TypicalRate:    6000,
			Phone:          "+918806859890",
			Email:          "priya@creators.example.com",
			Languages:      pq.StringArray{"English", "Hindi", "Punjabi"},
			ContentTypes:   pq.StringArray{"makeup_tutorials", "skincare_reviews", "fashion_hauls"},
			Bio:            "Makeup tutorials, skincare reviews, and fashion hauls with creative freedom",
		},
	}
}
