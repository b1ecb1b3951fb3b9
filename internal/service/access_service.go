package service

import (
	"strings"

	"github.com/noah-isme/arsip-desa-api/internal/models"
)

const (
	signInRedirect = "/signin"
	homeRedirect   = "/"
)

var (
	everyone = models.AllRoles
	managers = []models.UserRole{models.RoleAdministrator, models.RoleArchiveManager}
	admins   = []models.UserRole{models.RoleAdministrator}
)

// Pages is the static allow-list of front-end pages.
var Pages = []models.Page{
	{Path: "/", Label: "Dashboard", Roles: everyone},
	{Path: "/arsip-dokumen", Label: "Arsip Dokumen", Roles: everyone},
	{Path: "/jenis-dokumen", Label: "Jenis Dokumen", Roles: managers},
	{Path: "/laporan", Label: "Laporan", Roles: managers},
	{Path: "/profil-instansi", Label: "Profil Instansi", Roles: admins},
	{Path: "/manajemen-user", Label: "Manajemen User", Roles: admins},
	{Path: "/ubah-password", Label: "Ubah Password", Roles: everyone},
	{Path: "/tentang-aplikasi", Label: "Tentang Aplikasi", Roles: everyone},
}

// Route-group role sets used by the HTTP gate.
var (
	ArchiveWriters      = managers
	DocumentTypeWriters = managers
	ReportViewers       = managers
	ProfileEditors      = admins
	UserManagers        = admins
)

// AccessService answers page permission questions for a role.
type AccessService struct {
	pages []models.Page
	index map[string]models.Page
}

// NewAccessService builds the gate over the static page table.
func NewAccessService() *AccessService {
	index := make(map[string]models.Page, len(Pages))
	for _, p := range Pages {
		index[p.Path] = p
	}
	return &AccessService{pages: Pages, index: index}
}

// PagesFor lists the pages role may open, in menu order.
func (s *AccessService) PagesFor(role models.UserRole) []models.Page {
	out := make([]models.Page, 0, len(s.pages))
	for _, p := range s.pages {
		if RoleAllowed(role, p.Roles) {
			out = append(out, p)
		}
	}
	return out
}

// Check decides whether role may open page. Unknown pages are denied.
func (s *AccessService) Check(page string, role models.UserRole) models.AccessDecision {
	path := normalizePage(page)
	decision := models.AccessDecision{Page: path, Role: role}
	if role == "" {
		decision.Redirect = signInRedirect
		return decision
	}
	p, ok := s.index[path]
	if ok && RoleAllowed(role, p.Roles) {
		decision.Permitted = true
		return decision
	}
	decision.Redirect = homeRedirect
	return decision
}

// RoleAllowed reports whether role is in allowed.
func RoleAllowed(role models.UserRole, allowed []models.UserRole) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func normalizePage(page string) string {
	page = strings.TrimSpace(page)
	if i := strings.IndexAny(page, "?#"); i >= 0 {
		page = page[:i]
	}
	if !strings.HasPrefix(page, "/") {
		page = "/" + page
	}
	if len(page) > 1 {
		page = strings.TrimRight(page, "/")
	}
	return page
}
