package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
	"github.com/clipstream/clipstream/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"
)

// SessionAPI is the slice of the session controller the handlers need.
type SessionAPI interface {
	Register(ctx context.Context, in service.RegisterInput) (model.PublicUser, error)
	Login(ctx context.Context, login, password, ip string) (service.LoginResult, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	Refresh(ctx context.Context, presented string) (service.LoginResult, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
	CurrentUser(ctx context.Context, userID uuid.UUID) (model.PublicUser, error)
	UpdateAccount(ctx context.Context, userID uuid.UUID, email, fullName string) (model.PublicUser, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, f *service.FileUpload) (model.PublicUser, error)
	UpdateCoverImage(ctx context.Context, userID uuid.UUID, f *service.FileUpload) (model.PublicUser, error)
}

// GraphAPI is the slice of the graph service the handlers need.
type GraphAPI interface {
	Subscribe(ctx context.Context, subscriberID, channelID uuid.UUID) (*model.Subscription, error)
	ChannelProfile(ctx context.Context, handle string, viewerID uuid.UUID) (model.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID uuid.UUID) ([]model.WatchItem, error)
}

const maxUploadBytes = 32 << 20

// uploadField declares one expected multipart file field.
type uploadField struct {
	name     string
	required bool
	maxCount int
}

// filesFromMultipart validates the multipart form against the declared
// fields and opens at most one file per field.
func filesFromMultipart(r *http.Request, fields []uploadField) (map[string]*service.FileUpload, func(), error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, fmt.Errorf("%w: bad multipart form", errs.ErrValidation)
	}

	out := make(map[string]*service.FileUpload, len(fields))
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	for _, f := range fields {
		hdrs := r.MultipartForm.File[f.name]
		if len(hdrs) == 0 {
			if f.required {
				closeAll()
				return nil, nil, fmt.Errorf("%w: %s file is required", errs.ErrValidation, f.name)
			}
			continue
		}
		if len(hdrs) > f.maxCount {
			closeAll()
			return nil, nil, fmt.Errorf("%w: at most %d %s file(s)", errs.ErrValidation, f.maxCount, f.name)
		}
		file, err := hdrs[0].Open()
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("%w: cannot read %s file", errs.ErrValidation, f.name)
		}
		opened = append(opened, file)
		out[f.name] = &service.FileUpload{
			Filename:    hdrs[0].Filename,
			ContentType: hdrs[0].Header.Get("Content-Type"),
			Content:     file,
		}
	}
	return out, closeAll, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body", errs.ErrValidation)
	}
	return nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	files, closeFiles, err := filesFromMultipart(r, []uploadField{
		{name: "avatar", required: true, maxCount: 1},
		{name: "coverImage", required: false, maxCount: 1},
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	defer closeFiles()

	user, err := s.session.Register(r.Context(), service.RegisterInput{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		FullName: r.FormValue("fullName"),
		Password: r.FormValue("password"),
		Avatar:   files["avatar"],
		Cover:    files["coverImage"],
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, http.StatusCreated, user, "user registered")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeFailure(w, err)
		return
	}
	login := in.Username
	if login == "" {
		login = in.Email
	}

	res, err := s.session.Login(r.Context(), login, in.Password, r.RemoteAddr)
	if err != nil {
		writeFailure(w, err)
		return
	}
	setSessionCookies(w, res.Tokens.AccessToken, res.Tokens.RefreshToken, s.refreshTTL)
	writeData(w, http.StatusOK, loginPayload(res), "logged in")
}

func loginPayload(res service.LoginResult) map[string]any {
	return map[string]any{
		"user":         res.User,
		"accessToken":  res.Tokens.AccessToken,
		"refreshToken": res.Tokens.RefreshToken,
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}
	if err := s.session.Logout(r.Context(), userID); err != nil {
		writeFailure(w, err)
		return
	}
	clearSessionCookies(w)
	writeData(w, http.StatusOK, struct{}{}, "logged out")
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	presented := ""
	if c, err := r.Cookie(refreshCookieName); err == nil {
		presented = c.Value
	}
	if presented == "" {
		var in struct {
			RefreshToken string `json:"refreshToken"`
		}
		// Body is optional when the cookie is present.
		_ = json.NewDecoder(r.Body).Decode(&in)
		presented = in.RefreshToken
	}

	res, err := s.session.Refresh(r.Context(), presented)
	if err != nil {
		writeFailure(w, err)
		return
	}
	setSessionCookies(w, res.Tokens.AccessToken, res.Tokens.RefreshToken, s.refreshTTL)
	writeData(w, http.StatusOK, map[string]any{
		"accessToken":  res.Tokens.AccessToken,
		"refreshToken": res.Tokens.RefreshToken,
	}, "session refreshed")
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	var in struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeFailure(w, err)
		return
	}
	if err := s.session.ChangePassword(r.Context(), userID, in.OldPassword, in.NewPassword); err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, struct{}{}, "password changed")
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	user, err := s.session.CurrentUser(r.Context(), userID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, user, "current user")
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	var in struct {
		Email    string `json:"email"`
		FullName string `json:"fullName"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeFailure(w, err)
		return
	}
	user, err := s.session.UpdateAccount(r.Context(), userID, in.Email, in.FullName)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, user, "account updated")
}

func (s *Server) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	s.handleImageUpdate(w, r, "avatar", s.session.UpdateAvatar)
}

func (s *Server) handleUpdateCover(w http.ResponseWriter, r *http.Request) {
	s.handleImageUpdate(w, r, "coverImage", s.session.UpdateCoverImage)
}

func (s *Server) handleImageUpdate(
	w http.ResponseWriter, r *http.Request, field string,
	update func(context.Context, uuid.UUID, *service.FileUpload) (model.PublicUser, error),
) {
	userID, _ := UserIDFromCtx(r.Context())
	files, closeFiles, err := filesFromMultipart(r, []uploadField{
		{name: field, required: true, maxCount: 1},
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	defer closeFiles()

	user, err := update(r.Context(), userID, files[field])
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, user, field+" updated")
}

func (s *Server) handleChannelProfile(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := UserIDFromCtx(r.Context())
	profile, err := s.graph.ChannelProfile(r.Context(), chi.URLParam(r, "username"), viewerID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, profile, "channel profile")
}

func (s *Server) handleWatchHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	items, err := s.graph.WatchHistory(r.Context(), userID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, items, "watch history")
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SubscriberID string `json:"subscriberId"`
		ChannelID    string `json:"channelId"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeFailure(w, err)
		return
	}
	subscriberID, err := uuid.FromString(in.SubscriberID)
	if err != nil {
		writeFailure(w, fmt.Errorf("%w: bad subscriberId", errs.ErrValidation))
		return
	}
	channelID, err := uuid.FromString(in.ChannelID)
	if err != nil {
		writeFailure(w, fmt.Errorf("%w: bad channelId", errs.ErrValidation))
		return
	}

	sub, err := s.graph.Subscribe(r.Context(), subscriberID, channelID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, http.StatusCreated, sub, "subscribed")
}
