package analysis

import "mindbloom-backend/domain/core/valueobjects"

// Theme is a topic recognised in responses and memories.
type Theme struct {
	Name     string
	Keywords []string
	FollowUp string
}

// Themes is the fixed theme vocabulary. Keywords match as substrings of the
// lower-cased text, so they avoid short fragments that occur inside common
// unrelated words.
var Themes = []Theme{
	{
		Name: "family",
		Keywords: []string{
			"family", "mother", "mama", "father", "dad", "parent", "grandm", "grandp",
			"grandchild", "sister", "brother", "daughter", "husband", "wife", "children",
			"uncle", "cousin",
		},
		FollowUp: "Who else in your family was part of that time?",
	},
	{
		Name: "childhood",
		Keywords: []string{
			"child", "kid", "young", "school", "grew up", "growing up", "toy",
			"playground", "little girl", "little boy",
		},
		FollowUp: "What games did you like to play back then?",
	},
	{
		Name: "happiness",
		Keywords: []string{
			"happy", "happiness", "joy", "smile", "laugh", "love", "wonderful",
			"delight", "cheerful", "glad",
		},
		FollowUp: "What made that moment feel so good?",
	},
	{
		Name: "home",
		Keywords: []string{
			"home", "house", "kitchen", "garden", "porch", "backyard", "neighborhood",
			"living room", "bedroom",
		},
		FollowUp: "Can you describe what that place looked like?",
	},
	{
		Name: "food",
		Keywords: []string{
			"food", "cook", "bake", "baking", "recipe", "meal", "dinner", "breakfast",
			"lunch", "cake", "cookie", "bread", "soup",
		},
		FollowUp: "Do you remember how that food smelled or tasted?",
	},
}

// toneKeywords are checked in valueobjects.AllMoods order; neutral has none.
var toneKeywords = map[valueobjects.Mood][]string{
	valueobjects.MoodHappy: {
		"happy", "joy", "love", "wonderful", "smile", "laugh", "glad", "great",
		"beautiful", "special",
	},
	valueobjects.MoodExcited: {
		"excited", "thrilled", "amazing", "can't wait", "adventure", "incredible",
	},
	valueobjects.MoodCalm: {
		"calm", "peaceful", "quiet", "relaxed", "gentle", "serene",
	},
	valueobjects.MoodSad: {
		"sad", "miss", "lost", "cry", "cried", "lonely", "passed away", "grief",
	},
	valueobjects.MoodAnxious: {
		"worried", "anxious", "scared", "afraid", "nervous", "confused",
	},
}

// Markers used by the response assessment.
var (
	timeMarkers = []string{
		"remember", "years ago", "used to", "when i was", "back then", "that day",
		"one day", "every summer", "every sunday", "every year",
	}
	proceduralMarkers = []string{
		"how to", "first you", "then you", "step", "recipe", "used to make",
		"taught me to", "showed me how",
	}
	connectors = []string{"because", "then", "after", "before", "so", "but", "while"}

	genericFollowUps = []string{
		"Can you tell me more about that?",
		"How did that make you feel?",
		"What else do you remember about that time?",
	}
)

// Messages returned when there is nothing better to say.
const (
	NoMemoriesFollowUp    = "Thank you for sharing. Would you like to tell me more about that memory?"
	EncouragementFallback = "Thank you for sharing that with me. Every memory you share is precious."
	GenericFollowUp       = "What else comes to mind when you think about that?"
)
