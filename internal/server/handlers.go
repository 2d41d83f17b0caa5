package server

import (
	"net/http"

	"go.uber.org/zap"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- country handlers ---

func (s *Server) handleListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.countries.List(r.Context())
	if err != nil {
		s.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countries)
}

func (s *Server) handleGetCountry(w http.ResponseWriter, r *http.Request) {
	country, err := s.countries.GetByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		s.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, country)
}

func (s *Server) handleCountryStations(w http.ResponseWriter, r *http.Request) {
	f, err := s.parseStationFilter(r.URL.Query())
	if err != nil {
		s.writeErr(w, http.StatusBadRequest, err)
		return
	}
	page, err := s.stations.FindByCountry(r.Context(), r.PathValue("code"), f)
	if err != nil {
		s.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleCountryGenres(w http.ResponseWriter, r *http.Request) {
	names, err := s.stations.GenresByCountry(r.Context(), r.PathValue("code"))
	if err != nil {
		s.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// --- genre handlers ---

func (s *Server) handleListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.genres.List(r.Context())
	if err != nil {
		s.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

func (s *Server) handleGetGenre(w http.ResponseWriter, r *http.Request) {
	genre, err := s.genres.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, genre)
}

// --- station handlers ---

func (s *Server) handleListStations(w http.ResponseWriter, r *http.Request) {
	f, err := s.parseStationFilter(r.URL.Query())
	if err != nil {
		s.writeErr(w, http.StatusBadRequest, err)
		return
	}
	page, err := s.stations.FindAll(r.Context(), f)
	if err != nil {
		s.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleSearchStations(w http.ResponseWriter, r *http.Request) {
	q, limit, err := s.parseSearch(r.URL.Query())
	if err != nil {
		s.writeErr(w, http.StatusBadRequest, err)
		return
	}
	stations, err := s.stations.Search(r.Context(), q, limit)
	if err != nil {
		s.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stations)
}

func (s *Server) handleAllSlugs(w http.ResponseWriter, r *http.Request) {
	slugs, err := s.stations.AllSlugs(r.Context())
	if err != nil {
		s.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slugs)
}

func (s *Server) handleGetStation(w http.ResponseWriter, r *http.Request) {
	st, err := s.stations.FindBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleGetStationFull(w http.ResponseWriter, r *http.Request) {
	out, err := s.stations.FindBySlugWithRelated(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
