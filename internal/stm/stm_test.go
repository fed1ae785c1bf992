package stm

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAcceptRequiresEveryCondition(t *testing.T) {
	base := Intent{
		ShouldWrite: true,
		StateType:   StateDecision,
		Statement:   "use postgres for the new service",
		Confidence:  0.8,
	}
	assert.True(t, Accept(base))

	noWrite := base
	noWrite.ShouldWrite = false
	assert.False(t, Accept(noWrite))

	noType := base
	noType.StateType = ""
	assert.False(t, Accept(noType))

	badType := base
	badType.StateType = "mood"
	assert.False(t, Accept(badType))

	noStatement := base
	noStatement.Statement = ""
	assert.False(t, Accept(noStatement))

	lowConfidence := base
	lowConfidence.Confidence = 0.59
	assert.False(t, Accept(lowConfidence))

	atThreshold := base
	atThreshold.Confidence = 0.6
	assert.True(t, Accept(atThreshold))
}

func TestScratchpadMessageCap(t *testing.T) {
	pad := NewScratchpad(time.Minute)
	session := pad.Get("s1")

	for i := 0; i < messageCap+10; i++ {
		session.AppendMessage("user", fmt.Sprintf("message %d", i))
	}

	msgs := session.RecentMessages(messageCap + 10)
	assert.Len(t, msgs, messageCap)
	assert.Equal(t, "message 10", msgs[0].Content)
}

func TestScratchpadEventCap(t *testing.T) {
	pad := NewScratchpad(time.Minute)
	session := pad.Get("s1")

	for i := 0; i < eventCap+5; i++ {
		session.AppendEvent("tick", nil)
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	assert.Len(t, session.Events, eventCap)
}

func TestScratchpadSessionIdentity(t *testing.T) {
	pad := NewScratchpad(time.Minute)

	a := pad.Get("s1")
	a.SetRoute("edit", 0.9)

	assert.Equal(t, "edit", pad.Get("s1").CurrentRoute())
	assert.Empty(t, pad.Get("s2").CurrentRoute())
	assert.Equal(t, 2, pad.Len())
}

func TestScratchpadGoalsDeduplicate(t *testing.T) {
	pad := NewScratchpad(time.Minute)
	session := pad.Get("s1")

	session.AddGoal("ship the launch email")
	session.AddGoal("ship the launch email")
	session.AddGoal("")

	assert.Equal(t, []string{"ship the launch email"}, session.Goals)
}
