package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	_ "embed"

	"github.com/twipi/pubsub"
	"github.com/twipi/twipi/proto/out/twicmdproto"
	"github.com/twipi/twipi/proto/out/twismsproto"
	"github.com/twipi/twipi/twicmd"
	"github.com/twipi/twipi/twisms"
	"github.com/twipi/utttt/game"
	"github.com/twipi/utttt/session"
	"google.golang.org/protobuf/encoding/prototext"
)

//go:embed service.txtpb
var servicePrototext []byte

var service = (func() *twicmdproto.Service {
	service := new(twicmdproto.Service)
	if err := prototext.Unmarshal(servicePrototext, service); err != nil {
		panic(fmt.Sprintf("failed to unmarshal service proto: %v", err))
	}
	return service
})()

// Service is the Ultimate Tic-tac-toe Twicmd service. Each phone number plays
// its own game against the AI.
type Service struct {
	sendCh  chan *twismsproto.Message
	sendSub pubsub.Subscriber[*twismsproto.Message]
	games   *session.Store
	logger  *slog.Logger
}

var (
	_ twicmd.Service           = (*Service)(nil)
	_ twisms.MessageSubscriber = (*Service)(nil)
)

func NewService(games *session.Store, logger *slog.Logger) *Service {
	return &Service{
		sendCh: make(chan *twismsproto.Message),
		games:  games,
		logger: logger,
	}
}

// Name implements [twicmd.Service].
func (s *Service) Name() string {
	return service.Name
}

// Service implements [twicmd.Service].
func (s *Service) Service(ctx context.Context) (*twicmdproto.Service, error) {
	return service, nil
}

// Execute implements [twicmd.Service].
func (s *Service) Execute(ctx context.Context, req *twicmdproto.ExecuteRequest) (*twicmdproto.ExecuteResponse, error) {
	args := twicmd.MapArguments(req.Command.Arguments)
	from := req.Message.From
	key := gameKey(from)

	switch req.Command.Command {
	case "start":
		diff, err := session.ParseDifficulty(args["difficulty"])
		if err != nil {
			return twicmd.StatusResponse("Unknown difficulty. Please pick easy, medium or hard."), nil
		}

		s.logger.Debug(
			"starting new game",
			"phone_number", from,
			"difficulty", diff)

		gm, overridden := s.games.Start(key, diff)

		msg := fmt.Sprintf("A new %s game has started. You are ❌ and it is your turn.", diff)
		if overridden {
			msg = "An existing game was overridden. " + msg
		}
		s.reply(req.Message, msg)
		s.sendBoard(req.Message, "", gm.Snapshot().Game)
		return nil, nil

	case "place":
		s.logger.Debug(
			"placing piece",
			"phone_number", from,
			"board", args["board"],
			"cell", args["cell"])

		gm, ok := s.games.Load(key)
		if !ok {
			return twicmd.StatusResponse("No game found. Please start a new game."), nil
		}

		move, err := parseMove(args["board"], args["cell"])
		if err != nil {
			return twicmd.StatusResponse("Invalid position. Please provide a board and a cell, each between 1 and 9."), nil
		}

		out, err := gm.Play(move)
		switch {
		case errors.Is(err, session.ErrGameOver):
			return twicmd.StatusResponse("The game is over. Please start a new game."), nil
		case errors.Is(err, session.ErrIllegalMove):
			return twicmd.StatusResponse(illegalMoveMessage(gm.Snapshot().Game)), nil
		case err != nil:
			return twicmd.StatusResponse("You can't move right now."), nil
		}

		v := gm.Snapshot()
		if out.AIMoved {
			s.logger.Debug(
				"AI replied",
				"phone_number", from,
				"move", out.AI,
				"score", out.Score,
				"nodes", out.Nodes)

			s.sendBoard(req.Message, fmt.Sprintf(
				"You placed at %s. In return, the AI placed at %s:",
				moveString(out.Human), moveString(out.AI)), v.Game)
		} else {
			s.sendBoard(req.Message, fmt.Sprintf(
				"You placed at %s:", moveString(out.Human)), v.Game)
		}

		if winner, ended := v.Game.GameState(); ended {
			return twicmd.TextResponse(gameOverMessage(winner)), nil
		}
		return nil, nil

	case "undo":
		gm, ok := s.games.Load(key)
		if !ok {
			return twicmd.StatusResponse("No game found. Please start a new game."), nil
		}
		if !gm.Undo() {
			return twicmd.StatusResponse("There is nothing to undo."), nil
		}
		s.sendBoard(req.Message, "Your last move was taken back:", gm.Snapshot().Game)
		return nil, nil

	case "board":
		gm, ok := s.games.Load(key)
		if !ok {
			return twicmd.StatusResponse("No game found. Please start a new game."), nil
		}
		s.sendBoard(req.Message, "", gm.Snapshot().Game)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown command: %q", req.Command.Command)
	}
}

// gameKey returns the session key of a phone number. SMS games live in their
// own namespace of the shared store.
func gameKey(from string) string {
	return "sms:" + from
}

func (s *Service) reply(to *twismsproto.Message, text string) {
	s.sendCh <- twisms.NewReplyingMessage(to, twisms.NewTextBody(text))
}

func (s *Service) sendBoard(to *twismsproto.Message, prefix string, g *game.Game) {
	s.sendCh <- twisms.NewReplyingMessage(to, twisms.NewTextBody(drawBoard(prefix, g)))
}

// parseMove parses a board and a cell numbered 1 to 9 as printed.
func parseMove(board, cell string) (game.Move, error) {
	b, err := strconv.Atoi(strings.TrimSpace(board))
	if err != nil {
		return game.Move{}, fmt.Errorf("invalid board: %w", err)
	}
	c, err := strconv.Atoi(strings.TrimSpace(cell))
	if err != nil {
		return game.Move{}, fmt.Errorf("invalid cell: %w", err)
	}
	return game.MoveAt(b-1, c-1)
}

func moveString(m game.Move) string {
	return fmt.Sprintf("board %d, cell %d", m.Board+1, m.Cell+1)
}

func illegalMoveMessage(g *game.Game) string {
	if f, ok := g.Forced(); ok {
		return fmt.Sprintf("Invalid move. You must play an empty cell of board %d.", f+1)
	}
	return "Invalid move. Please pick an empty cell of a board that is still open."
}

func gameOverMessage(winner game.Player) string {
	if winner != game.NoPlayer {
		return fmt.Sprintf("The game is over. %s wins!", playerUnicode[winner])
	}
	return "The game is over. It's a draw!"
}

var playerUnicode = map[game.Player]string{
	game.PlayerX:  "❌",
	game.PlayerO:  "⚫",
	game.NoPlayer: "⬜",
}

// drawBoard draws the nine mini-boards with a blank line and a space between
// neighbouring boards, followed by the macro-board if any board is claimed.
func drawBoard(prefix string, g *game.Game) string {
	var s strings.Builder
	if prefix != "" {
		s.WriteString(prefix)
		s.WriteString("\n\n")
	}

	boards := g.Boards()
	for r := range 9 {
		if r == 3 || r == 6 {
			s.WriteString("\n")
		}
		for c := range 9 {
			if c == 3 || c == 6 {
				s.WriteString(" ")
			}
			s.WriteString(playerUnicode[boards[(r/3)*3+c/3][(r%3)*3+c%3]])
		}
		s.WriteString("\n")
	}

	macro := g.Macro()
	if macro != (game.Board{}) {
		s.WriteString("\nClaimed boards:\n")
		for r := range 3 {
			for c := range 3 {
				s.WriteString(playerUnicode[macro[r*3+c]])
			}
			s.WriteString("\n")
		}
	}

	if f, ok := g.Forced(); ok && !g.Over() {
		fmt.Fprintf(&s, "\nNext move goes in board %d.\n", f+1)
	}
	s.WriteString("❌ is your piece.\n")
	s.WriteString("⚫ is the AI's piece.")
	return s.String()
}

// Start runs the service until ctx is done.
func (s *Service) Start(ctx context.Context) error {
	return s.sendSub.Listen(ctx, s.sendCh)
}

// SubscribeMessages implements [twisms.MessageSubscriber].
func (s *Service) SubscribeMessages(ch chan<- *twismsproto.Message, filters *twismsproto.MessageFilters) {
	s.sendSub.Subscribe(ch, func(msg *twismsproto.Message) bool {
		return twisms.FilterMessage(filters, msg)
	})
}

// UnsubscribeMessages implements [twisms.MessageSubscriber].
func (s *Service) UnsubscribeMessages(ch chan<- *twismsproto.Message) {
	s.sendSub.Unsubscribe(ch)
}
