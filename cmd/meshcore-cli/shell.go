package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/mikewren/PocketMesh-sub009/pkg/messaging"
	"github.com/mikewren/PocketMesh-sub009/pkg/persistence"
	"github.com/mikewren/PocketMesh-sub009/pkg/remotenode"
	"github.com/mikewren/PocketMesh-sub009/pkg/session"
)

// shell drives the interactive command loop. Its command set and
// argument parsing follow the pattern the teacher's reference device CLI
// uses, adapted to MeshCore's contacts/channels/remote-node operations
// in place of MASH's zone/attribute model.
type shell struct {
	sess  *session.Session
	msg   *messaging.MessageService
	node  *remotenode.Service
	store *persistence.FileStore

	rl *readline.Instance
}

func newShell(sess *session.Session, msg *messaging.MessageService, node *remotenode.Service, store *persistence.FileStore) *shell {
	return &shell{sess: sess, msg: msg, node: node, store: store}
}

// Run starts the command loop. It returns once the user quits or ctx is
// cancelled.
func (sh *shell) Run(ctx context.Context) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "mesh> ",
		HistoryFile: "/tmp/meshcore-cli.history",
	})
	if err != nil {
		fmt.Printf("readline init failed, falling back to non-interactive: %v\n", err)
		return
	}
	defer rl.Close()
	sh.rl = rl

	sh.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			sh.printHelp()
		case "contacts", "c":
			sh.cmdContacts()
		case "send", "s":
			sh.cmdSend(ctx, args)
		case "chan-send", "cs":
			sh.cmdChannelSend(ctx, args)
		case "retry":
			sh.cmdRetry(ctx, args)
		case "login":
			sh.cmdLogin(ctx, args)
		case "logout":
			sh.cmdLogout(ctx, args)
		case "status-req":
			sh.cmdStatusRequest(ctx, args)
		case "neighbours", "n":
			sh.cmdNeighbours(ctx, args)
		case "self":
			sh.cmdSelf()
		case "quit", "exit", "q":
			fmt.Println("disconnecting...")
			return
		default:
			fmt.Printf("unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (sh *shell) printHelp() {
	fmt.Print(`
MeshCore Companion Commands:
  Contacts:
    contacts, c                  - List synced contacts
    self                         - Show this node's appStart info

  Messaging:
    send <pubkey-prefix> <text>      - Send a direct message with retry
    chan-send <channel> <text>       - Send a channel broadcast
    retry <pubkey-prefix> <text>     - Force a flood-routed manual retry

  Remote Node Admin:
    login <pubkey-prefix> <password> - Log into a room/repeater node
    logout <pubkey-prefix>           - Log out of the current admin session
    status-req <pubkey-prefix>       - Request remote node status
    neighbours, n <prefix-len>       - Fetch this node's neighbour table

  General:
    help, ?                      - Show this help
    quit, exit, q                 - Disconnect and exit

  Pubkey prefixes are hex strings, e.g. a1b2c3d4e5f6.
`)
}

func (sh *shell) cmdContacts() {
	contacts, err := sh.store.Contacts()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if len(contacts) == 0 {
		fmt.Println("no contacts synced yet")
		return
	}
	fmt.Printf("\nContacts (%d):\n", len(contacts))
	for _, c := range contacts {
		fmt.Printf("  %s  %s\n", c.PublicKeyHex[:12], c.Name)
	}
}

func (sh *shell) cmdSelf() {
	info := sh.sess.SelfInfo()
	if info == nil {
		fmt.Println("no appStart info cached")
		return
	}
	fmt.Printf("name=%s freq=%.3fMHz bw=%.1fkHz sf=%d cr=%d\n",
		info.NodeName, info.RadioFreqMHz, info.RadioBandwidthKHz, info.SpreadingFactor, info.CodingRate)
}

func (sh *shell) cmdSend(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Println("usage: send <pubkey-prefix> <text>")
		return
	}
	to, err := parsePrefix(args[0])
	if err != nil {
		fmt.Printf("invalid pubkey prefix: %v\n", err)
		return
	}
	text := strings.Join(args[1:], " ")
	id, err := sh.msg.SendMessageWithRetry(ctx, to, text, uint32(time.Now().Unix()), messaging.SendParams{})
	if err != nil {
		fmt.Printf("send failed (id=%s): %v\n", id, err)
		return
	}
	fmt.Printf("delivered, id=%s\n", id)
}

func (sh *shell) cmdChannelSend(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Println("usage: chan-send <channel> <text>")
		return
	}
	idx, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil {
		fmt.Printf("invalid channel index: %v\n", err)
		return
	}
	text := strings.Join(args[1:], " ")
	if _, err := sh.sess.SendChannelMessage(ctx, uint8(idx), text, uint32(time.Now().Unix())); err != nil {
		fmt.Printf("channel send failed: %v\n", err)
		return
	}
	fmt.Println("sent")
}

func (sh *shell) cmdRetry(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Println("usage: retry <pubkey-prefix> <text>")
		return
	}
	to, err := parsePrefix(args[0])
	if err != nil {
		fmt.Printf("invalid pubkey prefix: %v\n", err)
		return
	}
	text := strings.Join(args[1:], " ")
	id, err := sh.msg.ManualRetry(ctx, to, text, uint32(time.Now().Unix()), messaging.SendParams{})
	if err != nil {
		fmt.Printf("retry failed (id=%s): %v\n", id, err)
		return
	}
	fmt.Printf("delivered, id=%s\n", id)
}

func (sh *shell) cmdLogin(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Println("usage: login <pubkey-prefix> <password>")
		return
	}
	to, err := parsePrefix(args[0])
	if err != nil {
		fmt.Printf("invalid pubkey prefix: %v\n", err)
		return
	}
	if err := sh.node.Login(ctx, to, args[1]); err != nil {
		fmt.Printf("login failed: %v\n", err)
		return
	}
	fmt.Println("login sent, awaiting loginResult push")
}

func (sh *shell) cmdLogout(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Println("usage: logout <pubkey-prefix>")
		return
	}
	to, err := parsePrefix(args[0])
	if err != nil {
		fmt.Printf("invalid pubkey prefix: %v\n", err)
		return
	}
	if err := sh.node.Logout(ctx, to); err != nil {
		fmt.Printf("logout failed: %v\n", err)
		return
	}
	fmt.Println("logged out")
}

func (sh *shell) cmdStatusRequest(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Println("usage: status-req <pubkey-prefix>")
		return
	}
	to, err := parsePrefix(args[0])
	if err != nil {
		fmt.Printf("invalid pubkey prefix: %v\n", err)
		return
	}
	if err := sh.node.RequestStatus(ctx, to); err != nil {
		fmt.Printf("status request failed: %v\n", err)
		return
	}
	fmt.Println("status request sent, awaiting statusResponse push")
}

func (sh *shell) cmdNeighbours(ctx context.Context, args []string) {
	prefixLen := uint8(6)
	if len(args) >= 1 {
		v, err := strconv.ParseUint(args[0], 10, 8)
		if err != nil {
			fmt.Printf("invalid prefix length: %v\n", err)
			return
		}
		prefixLen = uint8(v)
	}
	neighbours, err := sh.node.RequestNeighbours(ctx, prefixLen)
	if err != nil {
		fmt.Printf("neighbours request failed: %v\n", err)
		return
	}
	if len(neighbours) == 0 {
		fmt.Println("no neighbours reported")
		return
	}
	for _, n := range neighbours {
		fmt.Printf("  %x\n", n)
	}
}

func parsePrefix(s string) ([6]byte, error) {
	var out [6]byte
	if len(s) != 12 {
		return out, fmt.Errorf("expected 12 hex characters, got %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}
