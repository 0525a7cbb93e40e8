package dashfm

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		want   string
		wantOK bool
	}{
		{"hidden input", `<form><input type="hidden" name="token" value="abc123"></form>`, "abc123", true},
		{"first of several", `<input name="token" value="one"><input name="token" value="two">`, "one", true},
		{"other inputs ignored", `<input name="user" value="x"><input name="token" value="t">`, "t", true},
		{"missing", `<form><input name="user" value="x"></form>`, "", false},
		{"empty value", `<input name="token" value="">`, "", false},
		{"no value attribute", `<input name="token">`, "", false},
		{"not html", `plain text`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractToken(tt.html)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ExtractToken() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		body string
		ctx  Context
		want Outcome
	}{
		{"plain page", "<html>files</html>", ContextPage, OutcomeSuccess},
		{"login redirect", `<script>window.location.replace("/login/");</script>`, ContextPage, OutcomeSessionExpired},
		{"file manager redirect", `<script>window.location.replace("/dashboard/filemanager");</script>`, ContextPage, OutcomeNotFound},
		{"login wins over not found", `window.location.replace("/dashboard/filemanager"); window.location.replace("/login/")`, ContextPage, OutcomeSessionExpired},
		{"login href redirect", `<script>window.location.href = '/login/';</script>`, ContextPage, OutcomeSessionExpired},
		{"login link in content", `<textarea>set {_u} to "https://example.com/login/"</textarea>`, ContextPage, OutcomeSuccess},
		{"probe sees any login path", `<a href="/login/">Log in</a>`, ContextProbe, OutcomeSessionExpired},
		{"probe redirect", `<script>window.location.replace("/login/");</script>`, ContextProbe, OutcomeSessionExpired},
		{"probe dashboard", "<html>dashboard</html>", ContextProbe, OutcomeSuccess},
		{"login accepted", `<script>window.location.replace("/dashboard/");</script>`, ContextLogin, OutcomeSuccess},
		{"login rejected", `<div>Invalid username or password</div>`, ContextLogin, OutcomeRejected},
		{"login back to login", `<script>window.location.replace("/login/");</script>`, ContextLogin, OutcomeRejected},
		{"login to file manager", `<script>window.location.replace("/dashboard/filemanager");</script>`, ContextLogin, OutcomeRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.body, tt.ctx); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRemotePath(t *testing.T) {
	t.Run("extension", func(t *testing.T) {
		tests := []struct {
			leaf, ext, base string
		}{
			{"test.sk", "sk", "test"},
			{"archive.tar.gz", "gz", "archive.tar"},
			{".hidden", "", ".hidden"},
			{"noext", "", "noext"},
			{"trailing.", "", "trailing."},
		}
		for _, tt := range tests {
			p := RemotePath{Leaf: tt.leaf}
			if got := p.Ext(); got != tt.ext {
				t.Errorf("Ext(%q) = %q, want %q", tt.leaf, got, tt.ext)
			}
			if got := p.Base(); got != tt.base {
				t.Errorf("Base(%q) = %q, want %q", tt.leaf, got, tt.base)
			}
		}
	})

	t.Run("string", func(t *testing.T) {
		p := RemotePath{Dir: []string{"scripts", "sub"}, Leaf: "test.sk"}
		if got := p.String(); got != "scripts/sub/test.sk" {
			t.Errorf("String() = %q", got)
		}
		top := RemotePath{Leaf: "test.sk"}
		if got := top.String(); got != "test.sk" {
			t.Errorf("String() = %q", got)
		}
	})
}

func TestPathSplitting(t *testing.T) {
	t.Run("containing dir", func(t *testing.T) {
		tests := []struct {
			raw  string
			want []string
		}{
			{`scripts\test.sk`, []string{"scripts"}},
			{`scripts\`, []string{"scripts"}},
			{`a\b\c.sk`, []string{"a", "b"}},
			{`a/b\c.sk`, []string{"a", "b"}},
			{`test.sk`, nil},
		}
		for _, tt := range tests {
			if got := ContainingDir(tt.raw, `\`); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ContainingDir(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		}
	})

	t.Run("split dir", func(t *testing.T) {
		got := SplitDir(`scripts\\sub/`, `\`)
		want := []string{"scripts", "sub"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("SplitDir() = %#v, want %#v", got, want)
		}
	})

	t.Run("local path", func(t *testing.T) {
		name, raw := SplitLocalPath("scripts/sub/test.sk", `\`)
		if name != "test.sk" || raw != `scripts\sub\test.sk` {
			t.Errorf("SplitLocalPath() = (%q, %q)", name, raw)
		}
		name, raw = SplitLocalPath("test.sk", "")
		if name != "test.sk" || raw != "test.sk" {
			t.Errorf("SplitLocalPath() = (%q, %q)", name, raw)
		}
	})

	t.Run("dir param", func(t *testing.T) {
		tests := []struct {
			base     string
			segments []string
			trailing bool
			want     string
		}{
			{"default", []string{"scripts"}, true, "/default/scripts/"},
			{"default", []string{"scripts"}, false, "/default/scripts"},
			{"default", nil, true, "/default/"},
			{"", nil, true, "/"},
			{"default", []string{"my scripts"}, false, "/default/my%20scripts"},
		}
		for _, tt := range tests {
			if got := dirParam(tt.base, tt.segments, tt.trailing); got != tt.want {
				t.Errorf("dirParam(%q, %v, %v) = %q, want %q", tt.base, tt.segments, tt.trailing, got, tt.want)
			}
		}
	})
}

func TestFormBuilders(t *testing.T) {
	h := Headers{Credential: "c1", UserAgent: "ua"}
	p := RemotePath{Dir: []string{"scripts"}, Leaf: "test.sk"}

	t.Run("new file", func(t *testing.T) {
		req := NewFileRequest(NewFileParams{BaseDir: "default", Path: p, Content: "on load:", Token: "abc"}, h)

		if req.Method != "POST" {
			t.Errorf("Method = %q", req.Method)
		}
		if got := req.URL(); got != "/dashboard/filemanager/?action=new&dir=/default/scripts/" {
			t.Errorf("URL() = %q", got)
		}
		want := map[string]string{
			"token":             "abc",
			"edit-file-name":    "test",
			"edit-file-content": "on load:",
			"edit-file-sub":     "Save",
			"ext":               "sk",
		}
		for k, v := range want {
			if got := req.Form.Get(k); got != v {
				t.Errorf("field %s = %q, want %q", k, got, v)
			}
		}
		if got := req.Header.Get("Cookie"); got != "PHPSESSID=c1" {
			t.Errorf("Cookie = %q", got)
		}
		if got := req.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", got)
		}
		if got := req.Header.Get("User-Agent"); got != "ua" {
			t.Errorf("User-Agent = %q", got)
		}
	})

	t.Run("scrape page matches submit URL", func(t *testing.T) {
		page := NewFilePage("default", p.Dir, h)
		submit := NewFileRequest(NewFileParams{BaseDir: "default", Path: p, Token: "abc"}, h)
		if page.URL() != submit.URL() {
			t.Errorf("page %q != submit %q", page.URL(), submit.URL())
		}
		if page.Method != "GET" || page.Form != nil {
			t.Errorf("page must be a plain GET")
		}
	})

	t.Run("new folder", func(t *testing.T) {
		req := NewFolderRequest(NewFolderParams{BaseDir: "default", Dir: []string{"scripts"}, Name: "sub", Token: "abc"}, h)
		if got := req.URL(); got != "/dashboard/filemanager/?action=new_folder&dir=/default/scripts" {
			t.Errorf("URL() = %q", got)
		}
		if req.Form.Get("new-folder-name") != "sub" || req.Form.Get("token") != "abc" || req.Form.Get("edit-file-sub") != "Save" {
			t.Errorf("Form = %v", req.Form)
		}
	})

	t.Run("edit file", func(t *testing.T) {
		req := EditFileRequest(EditFileParams{BaseDir: "default", Path: p, Content: "x", Token: "abc"}, h)
		want := "/dashboard/filemanager/&action=edit&medit=/default/scripts/test.sk&dir=/default/scripts"
		if got := req.URL(); got != want {
			t.Errorf("URL() = %q, want %q", got, want)
		}
		if req.Form.Get("edit-file-name") != "test" {
			t.Errorf("edit-file-name = %q", req.Form.Get("edit-file-name"))
		}
		if _, ok := req.Form["ext"]; ok {
			t.Error("edit form must not carry ext")
		}
	})

	t.Run("console", func(t *testing.T) {
		req := SendCommandRequest("sk reload test.sk", h)
		if req.URL() != "/dashboard/console-backend/" || req.Form.Get("sendcmd") != "sk reload test.sk" {
			t.Errorf("SendCommandRequest = %s %v", req.URL(), req.Form)
		}
		if _, ok := req.Form["token"]; ok {
			t.Error("console command must not carry a token")
		}
	})

	t.Run("login", func(t *testing.T) {
		if got := LoginPage(h).Header.Get("Cookie"); got != "" {
			t.Errorf("login page sent cookie %q", got)
		}
		req := LoginRequest(LoginParams{Username: "alice", Password: "pw", Token: "t"}, Headers{Credential: "anon"})
		if req.URL() != "/login" || req.Form.Get("username") != "alice" || req.Form.Get("password") != "pw" || req.Form.Get("token") != "t" {
			t.Errorf("LoginRequest = %s %v", req.URL(), req.Form)
		}
		if got := req.Header.Get("Cookie"); got != "PHPSESSID=anon" {
			t.Errorf("Cookie = %q", got)
		}
	})

	t.Run("get pages", func(t *testing.T) {
		tests := map[string]*Request{
			"/dashboard/":      ProbePage(h),
			"/dashboard/?s=42": SelectServerPage(42, h),
			"/account":         AccountPage(h),
			"/dashboard/filemanager/&dir=/default/scripts": DirectoryPage("default", []string{"scripts"}, h),
		}
		for want, req := range tests {
			if got := req.URL(); got != want {
				t.Errorf("URL() = %q, want %q", got, want)
			}
		}
	})
}

func TestParseServers(t *testing.T) {
	page := `<html><body><table>
<tr><th>Name</th><th>Version</th><th>Status</th><th>Players</th><th>Plan</th><th></th></tr>
<tr><td> Lobby </td><td>1.20</td><td>Online</td><td>3</td><td>Free</td><td><a href="/dashboard/?s=123">Manage</a></td></tr>
<tr><td>Broken</td><td></td><td></td><td></td><td></td><td><a href="/dashboard/">Manage</a></td></tr>
<tr><td>Short</td><td></td></tr>
<tr><td>Survival</td><td></td><td></td><td></td><td></td><td><a href="https://playerservers.com/dashboard/?s=456">Manage</a></td></tr>
</table></body></html>`

	servers, err := ParseServers(page)
	if err != nil {
		t.Fatalf("ParseServers failed: %v", err)
	}
	want := []Server{{Name: "Lobby", ID: 123}, {Name: "Survival", ID: 456}}
	if !reflect.DeepEqual(servers, want) {
		t.Errorf("ParseServers() = %#v, want %#v", servers, want)
	}

	t.Run("no table", func(t *testing.T) {
		servers, err := ParseServers("<html></html>")
		if err != nil {
			t.Fatalf("ParseServers failed: %v", err)
		}
		if servers == nil || len(servers) != 0 {
			t.Errorf("ParseServers() = %#v, want empty", servers)
		}
	})
}

func TestConsoleText(t *testing.T) {
	t.Run("html line breaks", func(t *testing.T) {
		got := ConsoleText("line one<br>line two<br/>line three")
		if got != "line one\nline two\nline three" {
			t.Errorf("ConsoleText() = %q", got)
		}
	})

	t.Run("raw text", func(t *testing.T) {
		got := ConsoleText("\x1b[32m[Skript]\x1b[0m §aReloaded\r\n")
		if got != "[Skript] Reloaded\n" {
			t.Errorf("ConsoleText() = %q", got)
		}
	})
}

func TestParseScriptErrors(t *testing.T) {
	block := `[Skript] Reloading test.sk...
[Skript] Line 2: (test.sk)
    Can't understand this event: 'on foo'
[Skript] Encountered 1 error while reloading test.sk! (5ms)
`

	t.Run("single block", func(t *testing.T) {
		report := ParseScriptErrors(block, "test.sk")
		if report == nil {
			t.Fatal("expected a report")
		}
		if report.FileName != "test.sk" || report.ErrorCount != 1 {
			t.Errorf("report = %+v", report)
		}
		want := "[Skript] Line 2: (test.sk)\n    Can't understand this event: 'on foo'"
		if report.Detail != want {
			t.Errorf("Detail = %q, want %q", report.Detail, want)
		}
	})

	t.Run("other script", func(t *testing.T) {
		if report := ParseScriptErrors(block, "other.sk"); report != nil {
			t.Errorf("unexpected report %+v", report)
		}
	})

	t.Run("last block wins", func(t *testing.T) {
		console := block + `[Skript] Reloading test.sk...
[Skript] Line 7: (test.sk)
    indentation error
[Skript] Line 9: (test.sk)
    missing colon
[Skript] Encountered 2 errors while reloading test.sk! (3ms)
`
		report := ParseScriptErrors(console, "test.sk")
		if report == nil || report.ErrorCount != 2 {
			t.Fatalf("report = %+v", report)
		}
		if strings.Contains(report.Detail, "on foo") {
			t.Errorf("Detail leaked an earlier block: %q", report.Detail)
		}
		if !strings.Contains(report.Detail, "missing colon") {
			t.Errorf("Detail = %q", report.Detail)
		}
	})

	t.Run("later clean reload", func(t *testing.T) {
		console := block + "[Skript] Successfully reloaded test.sk. (2ms)\n"
		if report := ParseScriptErrors(console, "test.sk"); report != nil {
			t.Errorf("unexpected report %+v", report)
		}
	})

	t.Run("path in name", func(t *testing.T) {
		console := strings.ReplaceAll(block, "reloading test.sk", "reloading scripts/test.sk")
		report := ParseScriptErrors(console, `scripts\test.sk`)
		if report == nil || report.FileName != "test.sk" {
			t.Errorf("report = %+v", report)
		}
	})
}

func TestSessionStore(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "session.json")
	store := NewSessionStore(file, quietLogger())

	session := NewSession("alice", "secret", 42)
	session.Credential = "cookie-1"

	if err := store.Save("https://a.example", session); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Error("password written to session store")
	}

	t.Run("load", func(t *testing.T) {
		restored := NewSession("alice", "secret", 0)
		ok, err := store.Load("https://a.example", restored)
		if err != nil || !ok {
			t.Fatalf("Load = (%v, %v)", ok, err)
		}
		if restored.Credential != "cookie-1" || restored.ServerID != 42 || restored.Owner != "alice" {
			t.Errorf("restored = %+v", restored)
		}
	})

	t.Run("other endpoint", func(t *testing.T) {
		ok, err := store.Load("https://b.example", &Session{})
		if err != nil || ok {
			t.Errorf("Load = (%v, %v), want nothing", ok, err)
		}
	})

	t.Run("keeps live credential", func(t *testing.T) {
		live := &Session{Credential: "live"}
		ok, _ := store.Load("https://a.example", live)
		if ok || live.Credential != "live" {
			t.Errorf("Load replaced credential: %+v", live)
		}
	})

	t.Run("forget", func(t *testing.T) {
		if err := store.Forget("https://a.example"); err != nil {
			t.Fatalf("Forget failed: %v", err)
		}
		ok, _ := store.Load("https://a.example", &Session{})
		if ok {
			t.Error("entry still present after Forget")
		}
	})

	t.Run("corrupt entries skipped", func(t *testing.T) {
		corrupt := filepath.Join(dir, "corrupt.json")
		content := `{"https://a.example": "garbage", "https://b.example": {"credential": "c", "serverId": 7, "owner": "bob"}}`
		if err := os.WriteFile(corrupt, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		s := NewSessionStore(corrupt, quietLogger())
		if ok, err := s.Load("https://a.example", &Session{}); ok || err != nil {
			t.Errorf("corrupt entry loaded: (%v, %v)", ok, err)
		}
		restored := &Session{}
		if ok, err := s.Load("https://b.example", restored); !ok || err != nil {
			t.Fatalf("Load = (%v, %v)", ok, err)
		}
		if restored.ServerID != 7 || restored.Owner != "bob" {
			t.Errorf("restored = %+v", restored)
		}
	})

	t.Run("unreadable file replaced", func(t *testing.T) {
		for i, content := range []string{"", "garbage", "[]"} {
			broken := filepath.Join(dir, fmt.Sprintf("broken-%d.json", i))
			if err := os.WriteFile(broken, []byte(content), 0600); err != nil {
				t.Fatal(err)
			}
			s := NewSessionStore(broken, quietLogger())
			if _, err := s.Load("https://a.example", &Session{}); err == nil {
				t.Errorf("Load(%q) succeeded on an unreadable file", content)
			}

			if err := s.Save("https://a.example", session); err != nil {
				t.Fatalf("Save(%q) failed: %v", content, err)
			}
			restored := &Session{}
			if ok, err := s.Load("https://a.example", restored); !ok || err != nil {
				t.Fatalf("Load after Save(%q) = (%v, %v)", content, ok, err)
			}
			if restored.Credential != "cookie-1" {
				t.Errorf("restored = %+v", restored)
			}

			if err := os.WriteFile(broken, []byte(content), 0600); err != nil {
				t.Fatal(err)
			}
			if err := s.Forget("https://a.example"); err != nil {
				t.Fatalf("Forget(%q) failed: %v", content, err)
			}
			if ok, err := s.Load("https://a.example", &Session{}); ok || err != nil {
				t.Errorf("Load after Forget(%q) = (%v, %v)", content, ok, err)
			}
		}
	})

	t.Run("forget without a file", func(t *testing.T) {
		missing := filepath.Join(dir, "missing.json")
		if err := NewSessionStore(missing, quietLogger()).Forget("https://a.example"); err != nil {
			t.Fatalf("Forget failed: %v", err)
		}
		if _, err := os.Stat(missing); !os.IsNotExist(err) {
			t.Errorf("Forget created %s", missing)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		s := NewSessionStore("", quietLogger())
		if err := s.Save("x", session); err != nil {
			t.Errorf("Save = %v", err)
		}
		if ok, err := s.Load("x", &Session{}); ok || err != nil {
			t.Errorf("Load = (%v, %v)", ok, err)
		}
	})
}

func TestDefaultSessionFile(t *testing.T) {
	if got := DefaultSessionFile("https://playerservers.com"); got != ".cubedfm_session_playerservers.com.json" {
		t.Errorf("DefaultSessionFile() = %q", got)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("full", func(t *testing.T) {
		path := write("full.yaml", `endpoint: https://dash.example
user: alice
pass: secret
server: 42
base_dir: default
folder_support: true
log_errors: true
timeout: 5s
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Endpoint != "https://dash.example" || cfg.Server != 42 || !cfg.FolderSupport || !cfg.LogErrors {
			t.Errorf("cfg = %+v", cfg)
		}
		if cfg.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v", cfg.Timeout)
		}
		if cfg.PathSeparator != DefaultSeparator {
			t.Errorf("PathSeparator = %q", cfg.PathSeparator)
		}
		if cfg.SessionFile != ".cubedfm_session_dash.example.json" {
			t.Errorf("SessionFile = %q", cfg.SessionFile)
		}

		opt := cfg.Options(nil, nil)
		if opt.BaseDir != "default" || opt.Endpoint != cfg.Endpoint {
			t.Errorf("Options() = %+v", opt)
		}
		s := cfg.Session()
		if s.Owner != "alice" || s.ServerID != 42 || !s.CanRenew() {
			t.Errorf("Session() = %+v", s)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig(write("min.yaml", "user: alice\n"))
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Endpoint != DefaultEndpoint || cfg.Timeout != DefaultTimeout {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := LoadConfig(write("nouser.yaml", "pass: x\n"))
		if err == nil || !strings.Contains(err.Error(), "user") {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(dir, "nope.yaml")); err == nil {
			t.Error("expected error")
		}
	})
}
