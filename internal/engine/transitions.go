package engine

import (
	"github.com/nfrund/tankbot/internal/protocol"
)

// class groups inbound messages by how the machine treats them.
type class int

const (
	classHandshake class = iota
	classTick
	classNotification
	classAbort
	classUnrecognized
	classOther
)

func classify(msg protocol.Message) class {
	switch msg.(type) {
	case *protocol.ServerHandshake:
		return classHandshake
	case *protocol.TickEventForBot:
		return classTick
	case *protocol.GameAbortedEvent:
		return classAbort
	case *protocol.Unrecognized:
		return classUnrecognized
	}
	if protocol.IsBotInbound(msg.MessageType()) {
		return classNotification
	}
	return classOther
}

type transition func(m *Machine, msg protocol.Message) (Action, error)

var transitions = map[Phase]map[class]transition{
	AwaitingHandshake: {
		classHandshake:    acceptHandshake,
		classTick:         rejectBeforeHandshake,
		classNotification: rejectBeforeHandshake,
		classAbort:        rejectBeforeHandshake,
		classUnrecognized: rejectBeforeHandshake,
		classOther:        rejectBeforeHandshake,
	},
	Active: {
		classHandshake:    rejectSecondHandshake,
		classTick:         deliverTick,
		classNotification: deliverNotification,
		classAbort:        abortGame,
		classUnrecognized: ignore,
		classOther:        rejectForeign,
	},
}

func acceptHandshake(m *Machine, msg protocol.Message) (Action, error) {
	hs := msg.(*protocol.ServerHandshake)
	m.sessionID = hs.SessionID
	m.phase = Active
	reply := protocol.NewBotHandshake(hs.SessionID, m.identity.Bot, m.identity.Team, m.identity.Droid, m.identity.Secret)
	return Action{Outbound: reply}, nil
}

func rejectBeforeHandshake(m *Machine, msg protocol.Message) (Action, error) {
	err := m.unexpected(msg, "server handshake has not been received")
	if m.strict {
		m.phase = Terminated
		m.reason = err
		return Action{Terminal: true}, err
	}
	_, unknown := msg.(*protocol.Unrecognized)
	return Action{Ignored: unknown}, err
}

func rejectSecondHandshake(m *Machine, msg protocol.Message) (Action, error) {
	return Action{}, m.unexpected(msg, "handshake already completed")
}

func rejectForeign(m *Machine, msg protocol.Message) (Action, error) {
	return Action{}, m.unexpected(msg, "not a message for bots")
}

func deliverTick(m *Machine, msg protocol.Message) (Action, error) {
	tick := msg.(*protocol.TickEventForBot)
	var err error
	if m.haveTurn && tick.RoundNumber == m.round && tick.TurnNumber < m.turn {
		err = m.unexpected(msg, "turn regression")
	}
	m.round, m.turn, m.haveTurn = tick.RoundNumber, tick.TurnNumber, true
	return Action{Tick: tick}, err
}

func deliverNotification(m *Machine, msg protocol.Message) (Action, error) {
	act := Action{Notify: msg}
	switch ev := msg.(type) {
	case *protocol.RoundStartedEvent:
		m.round, m.turn, m.haveTurn = ev.RoundNumber, 0, false
	case *protocol.GameStartedEventForBot:
		m.round, m.turn, m.haveTurn = 0, 0, false
		if !m.noReady {
			act.Outbound = &protocol.BotReady{}
		}
	}
	return act, nil
}

func abortGame(m *Machine, msg protocol.Message) (Action, error) {
	m.phase = Terminated
	return Action{Notify: msg, Terminal: true}, nil
}

func ignore(*Machine, protocol.Message) (Action, error) {
	return Action{Ignored: true}, nil
}
