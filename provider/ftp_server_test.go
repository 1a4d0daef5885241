package provider

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fioncat/txtcrawl/types"
	"github.com/stretchr/testify/require"
)

// testFtpServer is a minimal passive mode FTP server over an in-memory tree,
// enough for the commands the session sends.
type testFtpServer struct {
	listener net.Listener

	files map[string]string
	dirs  map[string]bool

	password string

	mu sync.Mutex

	// emptyListReply answers NLST on an empty directory. Empty means a
	// normal, empty listing.
	emptyListReply string

	// replies overrides the answer to an exact command line.
	replies map[string]string

	commands []string
}

func newTestFtpServer(t *testing.T, files map[string]string, dirs ...string) *testFtpServer {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &testFtpServer{
		listener: listener,
		files:    files,
		dirs:     map[string]bool{"/": true},
		password: "anonymous@",
		replies:  make(map[string]string),
	}
	for name := range files {
		for dir := path.Dir(name); dir != "/"; dir = path.Dir(dir) {
			s.dirs[dir] = true
		}
	}
	for _, dir := range dirs {
		s.dirs[dir] = true
	}

	go s.serve()
	t.Cleanup(func() { listener.Close() })
	return s
}

func (s *testFtpServer) setReply(line, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[line] = answer
}

func (s *testFtpServer) setEmptyListReply(answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emptyListReply = answer
}

func (s *testFtpServer) record(line string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, line)
	answer, ok := s.replies[line]
	return answer, ok
}

func (s *testFtpServer) getEmptyListReply() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emptyListReply
}

func (s *testFtpServer) remoteConfig() *types.RemoteConfig {
	addr := s.listener.Addr().(*net.TCPAddr)
	return &types.RemoteConfig{
		Server:      addr.IP.String(),
		Port:        addr.Port,
		User:        "anonymous",
		Password:    "anonymous@",
		DialTimeout: 5 * time.Second,
	}
}

func (s *testFtpServer) dial(t *testing.T) types.Session {
	t.Helper()
	session, err := newFtp(s.remoteConfig()).Dial(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func (s *testFtpServer) received(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var lines []string
	for _, line := range s.commands {
		if strings.HasPrefix(line, prefix) {
			lines = append(lines, line)
		}
	}
	return lines
}

func (s *testFtpServer) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *testFtpServer) children(dir string) []string {
	var names []string
	for name := range s.files {
		if path.Dir(name) == dir {
			names = append(names, path.Base(name))
		}
	}
	for name := range s.dirs {
		if name != "/" && path.Dir(name) == dir {
			names = append(names, path.Base(name))
		}
	}
	sort.Strings(names)
	return names
}

func (s *testFtpServer) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	reply := func(format string, args ...any) {
		fmt.Fprintf(conn, format+"\r\n", args...)
	}

	var data net.Listener
	closeData := func() {
		if data != nil {
			data.Close()
			data = nil
		}
	}
	defer closeData()
	acceptData := func() net.Conn {
		defer closeData()
		if data == nil {
			return nil
		}
		data.(*net.TCPListener).SetDeadline(time.Now().Add(5 * time.Second))
		dc, err := data.Accept()
		if err != nil {
			return nil
		}
		return dc
	}

	cwd := "/"
	resolve := func(arg string) string {
		if strings.HasPrefix(arg, "/") {
			return path.Clean(arg)
		}
		return path.Join(cwd, arg)
	}

	reply("220 test server ready")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if answer, ok := s.record(line); ok {
			if dc := acceptData(); dc != nil {
				dc.Close()
			}
			reply("%s", answer)
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "USER":
			reply("331 Please specify the password.")
		case "PASS":
			if arg != s.password {
				reply("530 Login incorrect.")
				continue
			}
			reply("230 Login successful.")
		case "TYPE":
			reply("200 Switching to Binary mode.")
		case "EPSV":
			closeData()
			data, err = net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				reply("425 Can't open data connection.")
				continue
			}
			reply("229 Entering Extended Passive Mode (|||%s|)", strconv.Itoa(data.Addr().(*net.TCPAddr).Port))
		case "CWD":
			target := resolve(arg)
			if !s.dirs[target] {
				reply("550 Failed to change directory.")
				continue
			}
			cwd = target
			reply("250 Directory successfully changed.")
		case "NLST":
			dc := acceptData()
			if dc == nil {
				reply("425 Failed to establish connection.")
				continue
			}
			target := resolve(arg)
			names := s.children(target)
			if emptyReply := s.getEmptyListReply(); len(names) == 0 && emptyReply != "" {
				dc.Close()
				reply("%s", emptyReply)
				continue
			}
			reply("150 Here comes the directory listing.")
			for _, name := range names {
				fmt.Fprintf(dc, "%s\r\n", name)
			}
			dc.Close()
			reply("226 Directory send OK.")
		case "RETR":
			dc := acceptData()
			if dc == nil {
				reply("425 Failed to establish connection.")
				continue
			}
			content, ok := s.files[resolve(arg)]
			if !ok {
				dc.Close()
				reply("550 Failed to open file.")
				continue
			}
			reply("150 Opening BINARY mode data connection.")
			fmt.Fprint(dc, content)
			dc.Close()
			reply("226 Transfer complete.")
		case "QUIT":
			reply("221 Goodbye.")
			return
		default:
			reply("502 Command not implemented.")
		}
	}
}
