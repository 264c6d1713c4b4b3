package state

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwebster45206/mystery-engine/pkg/chat"
	"github.com/jwebster45206/mystery-engine/pkg/decision"
	"github.com/jwebster45206/mystery-engine/pkg/investigation"
	"github.com/jwebster45206/mystery-engine/pkg/scenario"
)

type CommandType string

const (
	CmdLook     CommandType = "look"
	CmdMove     CommandType = "move"
	CmdTravel   CommandType = "travel"
	CmdTalk     CommandType = "talk"
	CmdContinue CommandType = "continue"
	CmdAsk      CommandType = "ask"
	CmdTopic    CommandType = "topic"
	CmdBye      CommandType = "bye"
	CmdClues    CommandType = "clues"
	CmdGraph    CommandType = "graph"
	CmdYes      CommandType = "yes"
	CmdNo       CommandType = "no"
	CmdAccuse   CommandType = "accuse"
	CmdSolve    CommandType = "solve"
	CmdSearch   CommandType = "search"
	CmdHistory  CommandType = "history"
	CmdHelp     CommandType = "help"
	CmdQuit     CommandType = "quit"
	CmdNone     CommandType = "" // not a command
)

var knownCommands = map[string]CommandType{
	"look":     CmdLook,
	"l":        CmdLook,
	"go":       CmdMove,
	"move":     CmdMove,
	"m":        CmdMove,
	"travel":   CmdTravel,
	"t":        CmdTravel,
	"talk":     CmdTalk,
	"e":        CmdTalk,
	"continue": CmdContinue,
	"c":        CmdContinue,
	"next":     CmdContinue,
	"ask":      CmdAsk,
	"topic":    CmdTopic,
	"change":   CmdTopic,
	"bye":      CmdBye,
	"leave":    CmdBye,
	"exit":     CmdBye,
	"clues":    CmdClues,
	"analyze":  CmdClues,
	"graph":    CmdGraph,
	"yes":      CmdYes,
	"y":        CmdYes,
	"no":       CmdNo,
	"n":        CmdNo,
	"accuse":   CmdAccuse,
	"solve":    CmdSolve,
	"reveal":   CmdSolve,
	"search":   CmdSearch,
	"find":     CmdSearch,
	"history":  CmdHistory,
	"log":      CmdHistory,
	"help":     CmdHelp,
	"h":        CmdHelp,
	"?":        CmdHelp,
	"quit":     CmdQuit,
	"q":        CmdQuit,
}

// ParseCommand splits input into a command and its argument. A bare
// direction such as "up" is a move. Unrecognised input returns CmdNone.
func ParseCommand(input string) (CommandType, string) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return CmdNone, ""
	}
	word, arg, _ := strings.Cut(trimmed, " ")
	word = strings.ToLower(word)
	arg = strings.TrimSpace(arg)

	if scenario.IsDirection(word) && arg == "" {
		return CmdMove, word
	}
	cmd, ok := knownCommands[word]
	if !ok {
		return CmdNone, ""
	}
	return cmd, arg
}

// CommandResult is the outcome of one line of player input.
type CommandResult struct {
	Handled bool   // false when the input was not a command
	Message string // text to show the player
	Speaker string // chat.SpeakerSystem, or the NPC who spoke
	Quit    bool
}

// HelpText lists the console commands.
const HelpText = `Commands:
  look (l)                  describe the room
  up/down/left/right        walk through an exit (or: go <direction>)
  travel <room> (t)         go straight to a room
  talk [name] (e)           talk to someone in the room
  continue (c), ask, topic  keep talking, ask about the case, change the subject
  bye                       end the conversation
  clues, graph              analyze the clues or the relationships
  yes / no                  answer the interrogation question
  search <words>            search the conversation log
  history                   show recent conversation
  accuse <name>             make your one accusation
  solve                     give up and reveal the answer
  quit (q)                  leave the game`

// Handle runs one line of player input.
func (d *Director) Handle(ctx context.Context, input string) (*CommandResult, error) {
	cmd, arg := ParseCommand(input)
	if cmd == CmdNone {
		return &CommandResult{
			Handled: false,
			Message: fmt.Sprintf("Unknown command %q. Type help for a list.", strings.TrimSpace(input)),
			Speaker: chat.SpeakerSystem,
		}, nil
	}

	var (
		msg     string
		err     error
		speaker = chat.SpeakerSystem
	)
	switch cmd {
	case CmdLook:
		msg = d.Look()
	case CmdMove:
		msg, err = d.Move(ctx, arg)
	case CmdTravel:
		msg, err = d.Travel(ctx, arg)
	case CmdTalk:
		msg, err = d.Talk(ctx, arg)
		speaker = d.state.ActiveNPC
	case CmdContinue:
		msg, err = d.Continue(ctx)
		speaker = d.state.ActiveNPC
	case CmdAsk:
		msg, err = d.Ask()
		speaker = d.state.ActiveNPC
	case CmdTopic:
		msg, err = d.ChangeTopic()
		speaker = d.state.ActiveNPC
	case CmdBye:
		var frame investigation.DialogFrame
		frame, err = d.EndDialogue()
		msg = fmt.Sprintf("You step away from %s.", frame.NPC)
	case CmdClues:
		msg = d.AnalyzeClues()
	case CmdGraph:
		msg = d.AnalyzeRelationships()
	case CmdYes:
		msg = d.Interrogate(decision.Yes)
	case CmdNo:
		msg = d.Interrogate(decision.No)
	case CmdAccuse:
		msg, err = d.Accuse(ctx, arg)
	case CmdSolve:
		msg, err = d.Reveal(ctx)
	case CmdSearch:
		msg = formatEntries(d.Search(strings.Fields(arg)...), "No conversation mentions that.")
	case CmdHistory:
		msg = formatEntries(d.session.Conversation().Last(10), "Nothing has been said yet.")
	case CmdHelp:
		msg = HelpText
	case CmdQuit:
		return &CommandResult{Handled: true, Message: "Goodbye.", Speaker: chat.SpeakerSystem, Quit: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &CommandResult{Handled: true, Message: msg, Speaker: speaker}, nil
}

func formatEntries(entries []chat.Entry, empty string) string {
	if len(entries) == 0 {
		return empty
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("[%s] %s: %s", e.Timestamp.Format("15:04:05"), e.Speaker, e.Message)
	}
	return strings.Join(lines, "\n")
}
