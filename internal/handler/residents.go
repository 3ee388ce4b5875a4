package handler

import (
	"net/http"
	"slices"

	"github.com/kaigo-records/care-records/backend/internal/domain"
	"github.com/kaigo-records/care-records/backend/internal/utils"
)

// GetActiveResidents 返回在住入住者名单，可以用 floor 参数按楼层筛选
func (h *Handler) GetActiveResidents(w http.ResponseWriter, r *http.Request) {
	residents, err := h.repository.ListActiveResidents()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if floor := r.URL.Query().Get("floor"); floor != "" {
		residents = slices.DeleteFunc(residents, func(resident *domain.Resident) bool {
			return resident.Floor != floor
		})
	}

	h.successResponse(w, r, "获取入住者列表成功", residents)
}

func (h *Handler) GetFloors(w http.ResponseWriter, r *http.Request) {
	residents, err := h.repository.ListActiveResidents()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	floors := make([]string, 0)
	for _, resident := range residents {
		if resident.Floor != "" && !slices.Contains(floors, resident.Floor) {
			floors = append(floors, resident.Floor)
		}
	}
	slices.Sort(floors)

	h.successResponse(w, r, "获取楼层列表成功", floors)
}

func (h *Handler) CreateResident(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name" validate:"required"`
		NameReading string `json:"nameReading"`
		RoomNumber  string `json:"roomNumber" validate:"required"`
		Floor       string `json:"floor"`
		Gender      string `json:"gender" validate:"required,oneof=男 女"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	resident := &domain.Resident{
		Name:        req.Name,
		NameReading: req.NameReading,
		RoomNumber:  req.RoomNumber,
		Floor:       req.Floor,
		Gender:      req.Gender,
	}

	if resident.NameReading == "" {
		resident.NameReading = utils.GenerateNameReading(resident.Name)
	}

	if err := h.repository.CreateResident(resident); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建入住者成功", resident)
}
