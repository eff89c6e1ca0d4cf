// Package web 提供转换服务的 Web UI 和 HTTP 接口。
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/iabetor/tingwen/internal/logger"
	"github.com/iabetor/tingwen/internal/service"
	"github.com/iabetor/tingwen/internal/store"
	"github.com/iabetor/tingwen/internal/tts"
)

//go:embed templates/index.html
var templatesFS embed.FS

// Server HTTP 服务。
type Server struct {
	conv      *service.Converter
	mux       *http.ServeMux
	tmpl      *template.Template
	maxUpload int64 // 上传体积上限（字节）
}

// NewServer 创建 Web 服务。
func NewServer(conv *service.Converter, maxUploadMB int) *Server {
	if maxUploadMB <= 0 {
		maxUploadMB = 32
	}
	s := &Server{
		conv:      conv,
		mux:       http.NewServeMux(),
		tmpl:      template.Must(template.ParseFS(templatesFS, "templates/index.html")),
		maxUpload: int64(maxUploadMB) << 20,
	}
	s.routes()
	return s
}

// ServeHTTP 实现 http.Handler。
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /convert", s.handleConvert)
	s.mux.HandleFunc("GET /api/voices", s.handleVoices)

	// 生成的音频文件直接从输出目录提供播放和下载
	fileServer := http.FileServer(http.Dir(s.conv.OutputDir()))
	s.mux.Handle("GET /audio/", http.StripPrefix("/audio/", fileServer))

	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// pageData 模板渲染数据。
type pageData struct {
	Voices            []tts.Voice
	OptimizeAvailable bool
	History           []store.Conversion

	Error      string
	ErrorStage string
	Result     *resultView
	Form       formState
}

// resultView 转换成功后的展示数据。
type resultView struct {
	Files   []fileView
	Chunks  int
	Stats   service.TextStats
	Elapsed string
	Preview string
}

// fileView 单个音频文件的展示数据。
type fileView struct {
	Name string
	URL  string
}

// formState 表单回显值。
type formState struct {
	Method       string
	Text         string
	URL          string
	Voice        string
	Rate         string
	Optimize     bool
	Instructions string
}

func defaultForm() formState {
	return formState{Method: "text", Voice: tts.DefaultVoice, Rate: "1.0"}
}

// handleIndex 渲染主页面。
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, pageData{Form: defaultForm()})
}

// handleVoices 返回可选音色列表。
func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(tts.Voices()); err != nil {
		logger.Errorf("[web] 编码音色列表失败: %v", err)
	}
}

// handleConvert 处理转换请求。请求同步执行，完成或失败后渲染结果页。
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	// ParseMultipartForm 的参数只限制内存用量，体积上限靠 MaxBytesReader 实施
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.renderError(w, http.StatusBadRequest, "请求体无效或上传文件过大", defaultForm())
		return
	}

	form := formState{
		Method:       r.FormValue("input_method"),
		Text:         r.FormValue("text"),
		URL:          r.FormValue("url"),
		Voice:        r.FormValue("voice"),
		Rate:         r.FormValue("rate"),
		Optimize:     r.FormValue("optimize") == "on",
		Instructions: r.FormValue("instructions"),
	}

	req, status, err := s.buildRequest(r, form)
	if err != nil {
		s.renderError(w, status, err.Error(), form)
		return
	}

	result, err := s.conv.Convert(r.Context(), req)
	if err != nil {
		var se *service.StageError
		data := pageData{Form: form}
		if errors.As(err, &se) {
			data.ErrorStage = se.StageLabel()
			data.Error = se.Err.Error()
		} else {
			data.Error = err.Error()
		}
		logger.Errorf("[web] 转换失败: %v", err)
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, data)
		return
	}

	view := &resultView{
		Chunks:  result.Chunks,
		Stats:   result.Stats,
		Elapsed: result.Elapsed.Round(10 * time.Millisecond).String(),
		Preview: preview(result.Text, 200),
	}
	for _, f := range result.Files {
		view.Files = append(view.Files, fileView{
			Name: f,
			URL:  path.Join("/audio", result.SessionDir, f),
		})
	}

	s.render(w, pageData{Result: view, Form: form})
}

// buildRequest 将表单内容转换为服务层请求，校验输入合法性。
func (s *Server) buildRequest(r *http.Request, form formState) (service.Request, int, error) {
	req := service.Request{
		Voice:        form.Voice,
		Optimize:     form.Optimize,
		Instructions: form.Instructions,
	}

	if form.Voice != "" && !tts.ValidVoice(form.Voice) {
		return req, http.StatusBadRequest, fmt.Errorf("不支持的音色: %s", form.Voice)
	}

	rate := 1.0
	if form.Rate != "" {
		v, err := strconv.ParseFloat(form.Rate, 64)
		if err != nil || v < 0.5 || v > 2.0 {
			return req, http.StatusBadRequest, fmt.Errorf("语速必须在 0.5 到 2.0 之间")
		}
		rate = v
	}
	req.Rate = rate

	switch form.Method {
	case "text", "":
		req.Source = service.SourceText
		req.Text = form.Text
	case "url":
		req.Source = service.SourceURL
		req.URL = form.URL
		req.SourceName = form.URL
	case "pdf":
		file, header, err := r.FormFile("pdf")
		if err != nil {
			return req, http.StatusBadRequest, fmt.Errorf("请选择要上传的 PDF 文件")
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return req, http.StatusBadRequest, fmt.Errorf("读取上传文件失败: %v", err)
		}
		req.Source = service.SourcePDF
		req.PDF = data
		req.SourceName = header.Filename
	default:
		return req, http.StatusBadRequest, fmt.Errorf("未知的输入方式: %s", form.Method)
	}

	return req, 0, nil
}

// renderError 渲染带错误提示的页面。
func (s *Server) renderError(w http.ResponseWriter, status int, msg string, form formState) {
	w.WriteHeader(status)
	s.render(w, pageData{Error: msg, Form: form})
}

// render 填充公共字段并执行模板。
func (s *Server) render(w http.ResponseWriter, data pageData) {
	data.Voices = tts.Voices()
	data.OptimizeAvailable = s.conv.OptimizeAvailable()

	history, err := s.conv.History(10)
	if err != nil {
		logger.Warnf("[web] 读取历史记录失败: %v", err)
	}
	data.History = history

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		logger.Errorf("[web] 渲染页面失败: %v", err)
	}
}

// preview 截取文本开头用于展示。
func preview(text string, max int) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max]) + "..."
}
