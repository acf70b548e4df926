package handlers

import (
	"net/http"

	"github.com/CrowderSoup/gamific/database"
	"github.com/CrowderSoup/gamific/services"
)

// BoardHandler maps the board resources onto BoardService.
type BoardHandler struct {
	boardService *services.BoardService
}

func NewBoardHandler(boardService *services.BoardService) *BoardHandler {
	return &BoardHandler{boardService: boardService}
}

func (h *BoardHandler) ListJourneys(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	journeys, err := h.boardService.ListJourneys(r.Context(), session)
	if err != nil {
		respondError(w, "listing journeys", err)
		return
	}
	writeData(w, http.StatusOK, journeys)
}

func (h *BoardHandler) GetJourney(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, "getting journey", err)
		return
	}
	journey, err := h.boardService.GetJourney(r.Context(), session, id)
	if err != nil {
		respondError(w, "getting journey", err)
		return
	}
	writeData(w, http.StatusOK, journey)
}

func (h *BoardHandler) CreateJourney(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	var in services.JourneyInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, "creating journey", err)
		return
	}
	journey, err := h.boardService.CreateJourney(r.Context(), session, in)
	if err != nil {
		respondError(w, "creating journey", err)
		return
	}
	writeData(w, http.StatusCreated, journey)
}

func (h *BoardHandler) UpdateJourney(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, "updating journey", err)
		return
	}
	var in services.JourneyInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, "updating journey", err)
		return
	}
	journey, err := h.boardService.UpdateJourney(r.Context(), session, id, in)
	if err != nil {
		respondError(w, "updating journey", err)
		return
	}
	writeData(w, http.StatusOK, journey)
}

func (h *BoardHandler) DeleteJourney(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, "deleting journey", err)
		return
	}
	if err := h.boardService.DeleteJourney(r.Context(), session, id); err != nil {
		respondError(w, "deleting journey", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// ColumnHandler serves one column family: journey columns or mission
// columns.
type ColumnHandler struct {
	boardService *services.BoardService
	family       database.Family
}

func NewColumnHandler(boardService *services.BoardService, family database.Family) *ColumnHandler {
	return &ColumnHandler{boardService: boardService, family: family}
}

func (h *ColumnHandler) List(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	columns, err := h.boardService.ListColumns(r.Context(), session, h.family)
	if err != nil {
		respondError(w, "listing "+h.family.Table, err)
		return
	}
	writeData(w, http.StatusOK, columns)
}

func (h *ColumnHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, "getting column", err)
		return
	}
	column, err := h.boardService.GetColumn(r.Context(), session, h.family, id)
	if err != nil {
		respondError(w, "getting column", err)
		return
	}
	writeData(w, http.StatusOK, column)
}

func (h *ColumnHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	var in services.ColumnInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, "creating column", err)
		return
	}
	column, err := h.boardService.CreateColumn(r.Context(), session, h.family, in)
	if err != nil {
		respondError(w, "creating column", err)
		return
	}
	writeData(w, http.StatusCreated, column)
}

func (h *ColumnHandler) Update(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, "updating column", err)
		return
	}
	var in services.ColumnInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, "updating column", err)
		return
	}
	column, err := h.boardService.UpdateColumn(r.Context(), session, h.family, id, in)
	if err != nil {
		respondError(w, "updating column", err)
		return
	}
	writeData(w, http.StatusOK, column)
}

func (h *ColumnHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, "deleting column", err)
		return
	}
	if err := h.boardService.DeleteColumn(r.Context(), session, h.family, id); err != nil {
		respondError(w, "deleting column", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *BoardHandler) ListMissions(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	missions, err := h.boardService.ListMissions(r.Context(), session)
	if err != nil {
		respondError(w, "listing missions", err)
		return
	}
	writeData(w, http.StatusOK, missions)
}

func (h *BoardHandler) GetMission(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, "getting mission", err)
		return
	}
	mission, err := h.boardService.GetMission(r.Context(), session, id)
	if err != nil {
		respondError(w, "getting mission", err)
		return
	}
	writeData(w, http.StatusOK, mission)
}

func (h *BoardHandler) CreateMission(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	var in services.MissionInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, "creating mission", err)
		return
	}
	mission, err := h.boardService.CreateMission(r.Context(), session, in)
	if err != nil {
		respondError(w, "creating mission", err)
		return
	}
	writeData(w, http.StatusCreated, mission)
}

func (h *BoardHandler) UpdateMission(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, "updating mission", err)
		return
	}
	var in services.MissionInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, "updating mission", err)
		return
	}
	mission, err := h.boardService.UpdateMission(r.Context(), session, id, in)
	if err != nil {
		respondError(w, "updating mission", err)
		return
	}
	writeData(w, http.StatusOK, mission)
}

func (h *BoardHandler) DeleteMission(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, "deleting mission", err)
		return
	}
	if err := h.boardService.DeleteMission(r.Context(), session, id); err != nil {
		respondError(w, "deleting mission", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *BoardHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	tasks, err := h.boardService.ListTasks(r.Context(), session)
	if err != nil {
		respondError(w, "listing tasks", err)
		return
	}
	writeData(w, http.StatusOK, tasks)
}

func (h *BoardHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, "getting task", err)
		return
	}
	task, err := h.boardService.GetTask(r.Context(), session, id)
	if err != nil {
		respondError(w, "getting task", err)
		return
	}
	writeData(w, http.StatusOK, task)
}

func (h *BoardHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	var in services.TaskInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, "creating task", err)
		return
	}
	task, err := h.boardService.CreateTask(r.Context(), session, in)
	if err != nil {
		respondError(w, "creating task", err)
		return
	}
	writeData(w, http.StatusCreated, task)
}

func (h *BoardHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, "updating task", err)
		return
	}
	var in services.TaskInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, "updating task", err)
		return
	}
	task, err := h.boardService.UpdateTask(r.Context(), session, id, in)
	if err != nil {
		respondError(w, "updating task", err)
		return
	}
	writeData(w, http.StatusOK, task)
}

func (h *BoardHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, "deleting task", err)
		return
	}
	if err := h.boardService.DeleteTask(r.Context(), session, id); err != nil {
		respondError(w, "deleting task", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *BoardHandler) UpdateSubtask(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, "updating subtask", err)
		return
	}
	var in services.SubtaskInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, "updating subtask", err)
		return
	}
	subtask, err := h.boardService.UpdateSubtask(r.Context(), session, id, in)
	if err != nil {
		respondError(w, "updating subtask", err)
		return
	}
	writeData(w, http.StatusOK, subtask)
}
