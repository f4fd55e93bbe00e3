// Package plugin loads embedders from external processes over
// hashicorp's go-plugin, so embedding backends can ship independently
// of the main binary.
package plugin

import (
	"context"
	"fmt"
	"net/rpc"
	"os/exec"

	"github.com/felixgeelhaar/engram/internal/embed"
	hcplugin "github.com/hashicorp/go-plugin"
)

// HandshakeConfig is used to handshake between host and plugin.
var HandshakeConfig = hcplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "ENGRAM_PLUGIN_MAGIC_COOKIE",
	MagicCookieValue: "engram-embedder",
}

// Info describes a served embedder.
type Info struct {
	Name      string
	Dimension int
}

// EmbedArgs carries the text to embed across the process boundary.
type EmbedArgs struct {
	Text string
}

// EmbedReply carries the resulting vector back.
type EmbedReply struct {
	Vector []float32
}

// InfoArgs is the empty argument for the Info call.
type InfoArgs struct{}

// EmbedderPlugin is the go-plugin shim for an embedder.
type EmbedderPlugin struct {
	Impl embed.Embedder
}

func (p *EmbedderPlugin) Server(*hcplugin.MuxBroker) (interface{}, error) {
	return &rpcServer{impl: p.Impl}, nil
}

func (p *EmbedderPlugin) Client(b *hcplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &rpcClient{client: c}, nil
}

// rpcServer runs inside the plugin process and delegates to the local
// implementation. The caller's context does not cross the process
// boundary.
type rpcServer struct {
	impl embed.Embedder
}

func (s *rpcServer) Embed(args EmbedArgs, reply *EmbedReply) error {
	vec, err := s.impl.Embed(context.Background(), args.Text)
	if err != nil {
		return err
	}
	reply.Vector = vec
	return nil
}

func (s *rpcServer) Info(args InfoArgs, reply *Info) error {
	reply.Name = s.impl.Name()
	reply.Dimension = s.impl.Dimension()
	return nil
}

// rpcClient runs in the host and satisfies embed.Embedder over the
// wire.
type rpcClient struct {
	client *rpc.Client
	info   Info
}

// load fetches the plugin's identity once, at open time.
func (c *rpcClient) load() error {
	return c.client.Call("Plugin.Info", InfoArgs{}, &c.info)
}

func (c *rpcClient) Embed(ctx context.Context, text string) ([]float32, error) {
	var reply EmbedReply
	if err := c.client.Call("Plugin.Embed", EmbedArgs{Text: text}, &reply); err != nil {
		return nil, &embed.Error{Provider: c.Name(), Err: err}
	}
	return reply.Vector, nil
}

func (c *rpcClient) Dimension() int {
	return c.info.Dimension
}

func (c *rpcClient) Name() string {
	if c.info.Name == "" {
		return "plugin"
	}
	return c.info.Name
}

// Serve runs impl as a plugin executable. Call this from a plugin's
// main; it blocks until the host disconnects.
func Serve(impl embed.Embedder) {
	hcplugin.Serve(&hcplugin.ServeConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins: map[string]hcplugin.Plugin{
			"embedder": &EmbedderPlugin{Impl: impl},
		},
	})
}

// Open launches the plugin binary at path and returns its embedder
// together with a kill function the caller must run when done.
func Open(path string) (embed.Embedder, func(), error) {
	client := hcplugin.NewClient(&hcplugin.ClientConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins: map[string]hcplugin.Plugin{
			"embedder": &EmbedderPlugin{},
		},
		Cmd: exec.Command(path),
	})

	conn, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("failed to start plugin %s: %w", path, err)
	}
	raw, err := conn.Dispense("embedder")
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("failed to dispense embedder: %w", err)
	}
	emb, ok := raw.(*rpcClient)
	if !ok {
		client.Kill()
		return nil, nil, fmt.Errorf("plugin %s is not an embedder", path)
	}
	if err := emb.load(); err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("failed to read plugin info: %w", err)
	}
	return emb, client.Kill, nil
}
