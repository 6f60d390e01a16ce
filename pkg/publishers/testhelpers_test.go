package publishers

import "github.com/samvad-hq/samvad-polls/pkg/polls"

func sampleEvent() Event {
	return NewEvent("Best editor", polls.PollResults{
		PollID:   5,
		Question: "Best editor?",
		Results: []polls.PollResultItem{
			{OptionID: 1, Text: "vim", VoteCount: 4},
			{OptionID: 2, Text: "emacs", VoteCount: 3},
		},
	})
}
