package guarantee

import "github.com/Amulyanrao7777/MorningGlow/internal/news"

// DefaultFallbackStories возвращает кураторский набор историй на случай нехватки живых новостей.
// У каждой истории фиксированный ID, PublishedAt проставляется в момент выбора.
func DefaultFallbackStories() []news.Article {
	return []news.Article{
		{
			ID:     "emergency_coral_1",
			Title:  "Ocean Guardians: Coral Reefs Show Remarkable Recovery",
			URL:    "https://oceanconservancy.org/blog/",
			Source: "Ocean Conservation",
			Summary: "In the calm of protected waters, coral reefs are telling a story of hope and resilience. " +
				"Carefully tended marine sanctuaries are seeing vibrant coral colonies return, their colors " +
				"blooming like underwater gardens. Reefs once thought beyond recovery now shelter countless " +
				"species again. With patient care and steady protection, nature keeps showing how gracefully it can heal.",
			Categories: []news.Category{news.CategoryEnvironmentHealing},
		},
		{
			ID:     "emergency_garden_1",
			Title:  "A Community's Gentle Gift: Neighbors Create Beautiful Garden",
			URL:    "https://www.communitygarden.org/",
			Source: "Community Gardens",
			Summary: "Neighbors came together to turn a forgotten corner of their street into a garden for elderly residents. " +
				"Raised beds, soft benches and winding paths now welcome anyone who wants a quiet moment among the flowers. " +
				"Volunteers take turns watering and sharing the harvest. The garden has become a place where friendships grow alongside the tomatoes.",
			Categories: []news.Category{news.CategoryHumanKindness, news.CategoryFeelGood},
		},
		{
			ID:     "emergency_library_1",
			Title:  "Little Libraries Bloom Across Small Towns",
			URL:    "https://littlefreelibrary.org/",
			Source: "Little Free Library",
			Summary: "Tiny book-sharing boxes are appearing on porches and park corners, each one stocked by neighbors. " +
				"Children leave drawings inside the covers for the next young reader to find. " +
				"Local teachers say reading circles have grown as families discover the boxes together. " +
				"Every shelf is a small invitation to slow down and share a story.",
			Categories: []news.Category{news.CategoryEducationWins, news.CategoryHumanKindness},
		},
		{
			ID:     "emergency_solar_1",
			Title:  "Sunlight Powers a Village School's New Chapter",
			URL:    "https://www.irena.org/news",
			Source: "Renewable Energy Stories",
			Summary: "A rural school now runs its classrooms and evening study hall on rooftop solar power. " +
				"Students who once packed up at sunset can read and learn well into the evening. " +
				"The project was designed with local technicians, who also teach a weekend renewable energy class. " +
				"Clean energy has quietly become part of the school's daily rhythm.",
			Categories: []news.Category{news.CategoryEthicalInnovation, news.CategoryEducationWins},
		},
		{
			ID:     "emergency_music_1",
			Title:  "Open-Air Concerts Bring Generations Together",
			URL:    "https://www.unesco.org/en/culture",
			Source: "Culture Notes",
			Summary: "Every Sunday evening, a small town square fills with music from local musicians of every age. " +
				"Grandparents teach old folk melodies while teenagers add guitars and gentle harmonies. " +
				"Families bring blankets and share homemade treats as the sun goes down. " +
				"The weekly gathering has become a joyful celebration of community and heritage.",
			Categories: []news.Category{news.CategoryArtCulture, news.CategoryFeelGood},
		},
		{
			ID:     "emergency_scholarship_1",
			Title:  "Women Scientists Mentor the Next Generation",
			URL:    "https://www.stemwomen.com/",
			Source: "STEM Stories",
			Summary: "A network of women scientists has opened its labs to high school girls for a summer mentorship program. " +
				"Students work side by side with researchers on real projects, from plant biology to robotics. " +
				"Many leave with new confidence and a clear picture of the future they want to build. " +
				"Several alumnae now return each year as mentors themselves.",
			Categories: []news.Category{news.CategoryWomenEmpowerment, news.CategoryEducationWins},
		},
	}
}
