package session

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"slither-server/internal/config"
	"slither-server/internal/wire"
)

var errUnknownSnake = errors.New("session: packet for unbound snake")

// HandleConn drives one accepted websocket connection until it closes:
// registers the session, runs the read loop, and cleans up its snake on
// disconnect.
func (srv *Server) HandleConn(ws *websocket.Conn) {
	sess := NewSession(ws)
	srv.Sessions.Add(sess)
	srv.log.Info().Str("session", sess.ID).Msg("client connected")

	defer func() {
		srv.World.Lock()
		if sess.HasSnake {
			srv.World.RemoveSnake(sess.SnakeID)
		}
		srv.World.Unlock()
		srv.Sessions.Remove(sess)
		sess.Close()
		srv.log.Info().Str("session", sess.ID).Msg("client disconnected")
	}()

	for {
		data, err := sess.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				srv.log.Debug().Str("session", sess.ID).Err(err).Msg("read error")
			}
			return
		}
		if len(data) == 0 {
			continue
		}
		if len(data) > wire.MaxInboundPayload {
			srv.log.Debug().Str("session", sess.ID).Int("len", len(data)).Msg("oversized packet discarded")
			continue
		}
		sess.LastPacketAt = time.Now()
		srv.handlePacket(sess, data)
	}
}

func (srv *Server) handlePacket(sess *Session, data []byte) {
	t := data[0]
	body := data[1:]

	switch {
	case t == wire.InStartLogin:
		_ = sess.Send(wire.EncodePreInit())

	case t == wire.InChallengeResp:
		// Accepted and discarded — never validated against the pre-init
		// payload; a real anti-cheat layer would check it here.

	case t == wire.InIdentify:
		srv.handleIdentify(sess, body)

	case t == wire.InPing:
		_ = sess.Send(wire.EncodePong())

	case t == wire.InStartAccel:
		srv.withSnake(sess, func(s snakeSetter) { s.SetBoosting(true) })

	case t == wire.InStopAccel:
		srv.withSnake(sess, func(s snakeSetter) { s.SetBoosting(false) })

	case t <= wire.InAngleMax:
		angle := wire.DecodeAngle(t)
		srv.withSnake(sess, func(s snakeSetter) { s.SetWangle(angle) })
	}
}

// snakeSetter is the narrow surface handlePacket needs from *game.Snake,
// named here so withSnake doesn't have to import game just to spell the
// concrete type in its callback signature.
type snakeSetter interface {
	SetWangle(float64)
	SetBoosting(bool)
}

func (srv *Server) withSnake(sess *Session, fn func(snakeSetter)) {
	if !sess.HasSnake {
		return
	}
	srv.World.Lock()
	defer srv.World.Unlock()
	s, ok := srv.World.Snakes[sess.SnakeID]
	if !ok {
		return
	}
	fn(s)
}

func (srv *Server) handleIdentify(sess *Session, body []byte) {
	pkt, err := wire.DecodeIdentify(body)
	if err != nil {
		srv.log.Debug().Str("session", sess.ID).Err(err).Msg("malformed identify packet")
		return
	}
	sess.ProtocolVersion = pkt.ProtocolVersion
	sess.Dialect = wire.DialectFor(pkt.ProtocolVersion)

	// A session that already controls a snake is re-identifying (name/skin
	// change), not spawning fresh — patch the existing snake in place
	// rather than creating a second one.
	if sess.HasSnake {
		srv.World.Lock()
		if s, ok := srv.World.Snakes[sess.SnakeID]; ok {
			s.Name = pkt.Name
			s.Skin = pkt.Skin
			s.CustomSkin = pkt.CustomSkin
		}
		srv.World.Unlock()
		return
	}

	srv.World.Lock()
	snake := srv.World.CreateSnake(pkt.Name, pkt.Skin, pkt.CustomSkin, false, srv.cfg.HumanSnakeStartScore)
	srv.World.Unlock()

	srv.Sessions.BindSnake(sess, snake.ID)

	_ = sess.Send(wire.EncodeInit(wire.InitParams{
		GameRadius:           config.GameRadius,
		MaxSnakeParts:        config.MaxSnakeParts,
		SectorSize:           config.SectorSize,
		SectorCountAlongEdge: config.SectorCountAlongEdge,
		Spangdv:              config.Spangdv,
		Nsp1:                 config.Nsp1,
		Nsp2:                 config.Nsp2,
		Nsp3:                 config.Nsp3,
		SnakeAngSpeed:        config.SnakeAngularSpeed,
		PreyAngSpeed:         config.PreyAngularSpeed,
		SnakeTailK:           config.SnakeTailK,
		ProtocolVersion:      config.ProtocolVersionServer,
	}))
}
