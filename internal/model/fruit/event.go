package fruit

import "time"

const EventCreated = "fruit.created"

// Event 水果变更后推送给实时订阅者的事件
type Event struct {
	Type  string    `json:"type"`
	Fruit Fruit     `json:"fruit"`
	At    time.Time `json:"at"`
}

func NewCreatedEvent(item Fruit) Event {
	return Event{Type: EventCreated, Fruit: item, At: time.Now().UTC()}
}
