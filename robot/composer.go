package robot

import (
	"fmt"

	"github.com/google/uuid"
)

// Controller is the primitive command surface the Composer sequences over.
// *Client implements it; tests substitute a recorder.
type Controller interface {
	MoveToPoint(serial, mapID, targetPointID string) error
	Speak(serial, text, webURL string) error
}

// EventEmitter is the interface the composer uses to report sequence lifecycle.
type EventEmitter interface {
	EmitSequenceStarted(seqID, sequence, serial string)
	EmitSequenceCompleted(seqID, sequence, serial string)
	EmitSequenceFailed(seqID, sequence, serial, step string, err error)
}

// Guidance and delivery phrases spoken by the robot.
const (
	phraseGuideGeneric   = "请跟我来，我带您去您的座位。"
	phraseGuideTableFmt  = "请跟我来，我带您去%s号桌。"
	phraseDeliverGeneric = "您的餐点来了，请享用。"
	phraseDeliverFmt     = "正在为%s号桌送餐，请稍候。"
	phraseReturnHome     = "任务完成，正在返回待命位置。"
	phraseWelcome        = "欢迎光临！很高兴为您服务。"

	// ArrivalPhrase is spoken when the robot reports arrival at the dining
	// area with an order in flight.
	ArrivalPhrase = "您的菜品已送达，请慢用。"
)

// Composer builds multi-step robot command sequences out of Controller
// primitives. Each sequence runs its steps strictly in order: a step is only
// attempted after the previous one succeeded, and the first failure aborts
// the rest. A step the robot already executed is not compensated.
type Composer struct {
	ctrl    Controller
	emitter EventEmitter
}

// NewComposer creates a Composer over the given controller.
func NewComposer(ctrl Controller, emitter EventEmitter) *Composer {
	return &Composer{ctrl: ctrl, emitter: emitter}
}

// GuideToTable announces the guidance phrase, then moves to the table point.
func (c *Composer) GuideToTable(serial, mapID, targetPointID, tableLabel string) error {
	phrase := phraseGuideGeneric
	if tableLabel != "" {
		phrase = fmt.Sprintf(phraseGuideTableFmt, tableLabel)
	}
	return c.run("guide_to_table", serial, []step{
		{"speak", func() error { return c.ctrl.Speak(serial, phrase, "") }},
		{"move", func() error { return c.ctrl.MoveToPoint(serial, mapID, targetPointID) }},
	})
}

// DeliverFood moves to the table point first, then announces the delivery.
// Ordering is the reverse of GuideToTable: the robot should not announce food
// it has not brought yet.
func (c *Composer) DeliverFood(serial, mapID, targetPointID, tableLabel string) error {
	phrase := phraseDeliverGeneric
	if tableLabel != "" {
		phrase = fmt.Sprintf(phraseDeliverFmt, tableLabel)
	}
	return c.run("deliver_food", serial, []step{
		{"move", func() error { return c.ctrl.MoveToPoint(serial, mapID, targetPointID) }},
		{"speak", func() error { return c.ctrl.Speak(serial, phrase, "") }},
	})
}

// ReturnHome announces completion, then moves back to the home point.
func (c *Composer) ReturnHome(serial, homeMapID, homePointID string) error {
	return c.run("return_home", serial, []step{
		{"speak", func() error { return c.ctrl.Speak(serial, phraseReturnHome, "") }},
		{"move", func() error { return c.ctrl.MoveToPoint(serial, homeMapID, homePointID) }},
	})
}

// Say speaks a single phrase as a one-step sequence. The telemetry router
// uses it for the arrival announcement.
func (c *Composer) Say(serial, text string) error {
	return c.run("say", serial, []step{
		{"speak", func() error { return c.ctrl.Speak(serial, text, "") }},
	})
}

// Welcome speaks a greeting. Single step, provided for symmetry with the
// UI-facing convenience calls.
func (c *Composer) Welcome(serial, customMessage string) error {
	msg := customMessage
	if msg == "" {
		msg = phraseWelcome
	}
	return c.run("welcome", serial, []step{
		{"speak", func() error { return c.ctrl.Speak(serial, msg, "") }},
	})
}

type step struct {
	name string
	fn   func() error
}

func (c *Composer) run(sequence, serial string, steps []step) error {
	seqID := fmt.Sprintf("seq-%s", uuid.New().String()[:8])
	if c.emitter != nil {
		c.emitter.EmitSequenceStarted(seqID, sequence, serial)
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			if c.emitter != nil {
				c.emitter.EmitSequenceFailed(seqID, sequence, serial, s.name, err)
			}
			return &SequenceError{Sequence: sequence, Step: s.name, Err: err}
		}
	}
	if c.emitter != nil {
		c.emitter.EmitSequenceCompleted(seqID, sequence, serial)
	}
	return nil
}
