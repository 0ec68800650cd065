package config

// Document keys known to the configuration store.
const (
	KeyGiftPrices       = "gift_prices"
	KeyStreakMilestones = "streak_milestones"
	KeyActionRewards    = "action_rewards"
)

// Milestone is a streak badge shown when a user's streak reaches the
// threshold used as its map key.
type Milestone struct {
	Color string `json:"color"`
	Emoji string `json:"emoji"`
	Name  string `json:"name"`
}

// Reward is the suggested award for one approved action.
type Reward struct {
	Streak    int `json:"streak"`
	EcoTokens int `json:"ecoTokens"`
}

// ActionRewards maps post tags to their suggested rewards, with a fallback
// for untagged or unknown actions.
type ActionRewards struct {
	Default Reward            `json:"default"`
	Tags    map[string]Reward `json:"tags"`
}

// GiftPrices overrides an item's required points by item ID.
type GiftPrices map[string]int

func DefaultStreakMilestones() map[string]Milestone {
	return map[string]Milestone{
		"50":  {Color: "#4CAF50", Emoji: "🌱", Name: "Green Sprout"},
		"100": {Color: "#FFD700", Emoji: "🌳", Name: "Eco Champion"},
	}
}

func DefaultActionRewards() ActionRewards {
	return ActionRewards{
		Default: Reward{Streak: 1, EcoTokens: 10},
		Tags: map[string]Reward{
			"recycling":       {Streak: 1, EcoTokens: 15},
			"planting":        {Streak: 1, EcoTokens: 25},
			"cleanup":         {Streak: 1, EcoTokens: 20},
			"energy-saving":   {Streak: 1, EcoTokens: 10},
			"water-saving":    {Streak: 1, EcoTokens: 10},
			"green-transport": {Streak: 1, EcoTokens: 15},
		},
	}
}

func DefaultGiftPrices() GiftPrices {
	return GiftPrices{}
}
