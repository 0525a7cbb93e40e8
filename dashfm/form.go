package dashfm

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Dashboard endpoints
const (
	PathLogin          = "/login"
	PathAccount        = "/account"
	PathDashboard      = "/dashboard/"
	PathFileManager    = "/dashboard/filemanager/"
	PathConsoleBackend = "/dashboard/console-backend/"
)

const (
	sessionCookie  = "PHPSESSID"
	submitValue    = "Save"
	formURLEncoded = "application/x-www-form-urlencoded"
)

// Request describes a single dashboard HTTP exchange. It carries no I/O state.
type Request struct {
	Method   string
	Path     string // Path relative to the endpoint, may contain a literal query
	RawQuery string // Encoded query appended with ? (or & if Path already has one)
	Header   http.Header
	Form     url.Values // Encoded as the urlencoded body of a POST
}

// URL returns the path and query as sent to the endpoint
func (r *Request) URL() string {
	if r.RawQuery == "" {
		return r.Path
	}
	if strings.Contains(r.Path, "?") {
		return r.Path + "&" + r.RawQuery
	}
	return r.Path + "?" + r.RawQuery
}

// Body returns the encoded form body
func (r *Request) Body() string {
	if r.Form == nil {
		return ""
	}
	return r.Form.Encode()
}

// Headers is the header set shared by every request of a session
type Headers struct {
	Credential string
	UserAgent  string
}

func (h Headers) build() http.Header {
	header := make(http.Header)
	if h.Credential != "" {
		header.Set("Cookie", sessionCookie+"="+h.Credential)
	}
	if h.UserAgent != "" {
		header.Set("User-Agent", h.UserAgent)
	}
	return header
}

func get(path, rawQuery string, h Headers) *Request {
	return &Request{
		Method:   http.MethodGet,
		Path:     path,
		RawQuery: rawQuery,
		Header:   h.build(),
	}
}

func post(page *Request, form url.Values) *Request {
	header := page.Header.Clone()
	header.Set("Content-Type", formURLEncoded)
	return &Request{
		Method:   http.MethodPost,
		Path:     page.Path,
		RawQuery: page.RawQuery,
		Header:   header,
		Form:     form,
	}
}

// NewFileParams are the fields of the new-file form
type NewFileParams struct {
	BaseDir string
	Path    RemotePath
	Content string
	Token   string
}

// NewFilePage is the page the new-file token is scraped from
func NewFilePage(base string, dir []string, h Headers) *Request {
	return get(PathFileManager, "action=new&dir="+dirParam(base, dir, true), h)
}

// NewFileRequest builds the new-file submission. The name field carries the
// leaf without its extension, the extension goes in its own field.
func NewFileRequest(p NewFileParams, h Headers) *Request {
	form := url.Values{}
	form.Set("token", p.Token)
	form.Set("edit-file-name", p.Path.Base())
	form.Set("edit-file-content", p.Content)
	form.Set("edit-file-sub", submitValue)
	form.Set("ext", p.Path.Ext())
	return post(NewFilePage(p.BaseDir, p.Path.Dir, h), form)
}

// NewFolderParams are the fields of the new-folder form
type NewFolderParams struct {
	BaseDir string
	Dir     []string
	Name    string
	Token   string
}

// NewFolderPage is the page the new-folder token is scraped from
func NewFolderPage(base string, dir []string, h Headers) *Request {
	return get(PathFileManager, "action=new_folder&dir="+dirParam(base, dir, false), h)
}

// NewFolderRequest builds the new-folder submission
func NewFolderRequest(p NewFolderParams, h Headers) *Request {
	form := url.Values{}
	form.Set("new-folder-name", p.Name)
	form.Set("token", p.Token)
	form.Set("edit-file-sub", submitValue)
	return post(NewFolderPage(p.BaseDir, p.Dir, h), form)
}

// EditFileParams are the fields of the edit form
type EditFileParams struct {
	BaseDir string
	Path    RemotePath
	Content string
	Token   string
}

// EditFilePage is the editor page of an existing file. The dashboard expects
// the query to follow the path with & rather than ?.
func EditFilePage(base string, p RemotePath, h Headers) *Request {
	medit := dirParam(base, append(append([]string{}, p.Dir...), p.Leaf), false)
	return get(PathFileManager+"&action=edit&medit="+medit+"&dir="+dirParam(base, p.Dir, false), "", h)
}

// EditFileRequest builds the edit submission. Unlike new-file the edit form
// has no extension field.
func EditFileRequest(p EditFileParams, h Headers) *Request {
	form := url.Values{}
	form.Set("token", p.Token)
	form.Set("edit-file-name", p.Path.Base())
	form.Set("edit-file-content", p.Content)
	form.Set("edit-file-sub", submitValue)
	return post(EditFilePage(p.BaseDir, p.Path, h), form)
}

// DirectoryPage is the file manager listing of a directory
func DirectoryPage(base string, dir []string, h Headers) *Request {
	return get(PathFileManager+"&dir="+dirParam(base, dir, false), "", h)
}

// SendCommandRequest posts a console command. The console backend needs no token.
func SendCommandRequest(cmd string, h Headers) *Request {
	form := url.Values{}
	form.Set("sendcmd", cmd)
	return post(ConsolePage(h), form)
}

// ConsolePage returns the console output
func ConsolePage(h Headers) *Request {
	return get(PathConsoleBackend, "", h)
}

// LoginPage is fetched anonymously to obtain a token and a pre-auth cookie
func LoginPage(h Headers) *Request {
	return get(PathLogin, "", Headers{UserAgent: h.UserAgent})
}

// LoginParams are the fields of the login form
type LoginParams struct {
	Username string
	Password string
	Token    string
}

// LoginRequest builds the credential submission. h.Credential must be the
// pre-auth cookie issued with the login page.
func LoginRequest(p LoginParams, h Headers) *Request {
	form := url.Values{}
	form.Set("username", p.Username)
	form.Set("password", p.Password)
	form.Set("token", p.Token)
	return post(get(PathLogin, "", h), form)
}

// ProbePage is a page only reachable with an authenticated session
func ProbePage(h Headers) *Request {
	return get(PathDashboard, "", h)
}

// SelectServerPage switches the server context of the session
func SelectServerPage(id int, h Headers) *Request {
	return get(PathDashboard, "s="+strconv.Itoa(id), h)
}

// AccountPage lists the servers of the account
func AccountPage(h Headers) *Request {
	return get(PathAccount, "", h)
}
