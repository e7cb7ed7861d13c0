// Package azureapitest provides an in-process fake of the Azure DevOps REST
// API surface the client uses, for tests that need to observe requests or
// inject failures without network access.
package azureapitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/pipewright/pipewright/azureapi/documents"
)

const continuationTokenHeader = "X-MS-ContinuationToken"

// Operation names accepted by FailNext.
const (
	OpGetProject       = "GetProject"
	OpCreateDefinition = "CreateDefinition"
	OpGetDefinition    = "GetDefinition"
	OpListDefinitions  = "ListDefinitions"
	OpDeleteDefinition = "DeleteDefinition"
	OpQueueBuild       = "QueueBuild"
	OpGetBuild         = "GetBuild"
	OpGetAgentQueues   = "GetAgentQueues"
)

type injectedFailure struct {
	statusCode int
	doc        *documents.ErrorDocument
}

// FakeServer is an in-process Azure DevOps organization. It records every
// definition created and build queued, and can fail the next call to a
// given operation with a vendor-style error document.
type FakeServer struct {
	server *httptest.Server

	mu            sync.Mutex
	projects      map[string]*documents.TeamProject
	definitions   map[int]*documents.BuildDefinition
	builds        map[int]*documents.Build
	queues        []*documents.AgentQueue
	nextDefID     int
	nextBuildID   int
	buildCounter  int
	pageSize      int
	failures      map[string]injectedFailure
	authorization []string
	sessionIDs    []string
}

func NewFakeServer() *FakeServer {
	s := &FakeServer{
		projects:    make(map[string]*documents.TeamProject),
		definitions: make(map[int]*documents.BuildDefinition),
		builds:      make(map[int]*documents.Build),
		nextDefID:   1,
		nextBuildID: 1,
		pageSize:    100,
		failures:    make(map[string]injectedFailure),
	}

	r := chi.NewRouter()
	r.Use(s.recordHeaders)
	r.Route("/{organization}", func(r chi.Router) {
		r.Get("/_apis/projects/{projectName}", s.getProject)
		r.Route("/{project}/_apis", func(r chi.Router) {
			r.Post("/build/definitions", s.createDefinition)
			r.Get("/build/definitions", s.listDefinitions)
			r.Get("/build/definitions/{definitionID}", s.getDefinition)
			r.Delete("/build/definitions/{definitionID}", s.deleteDefinition)
			r.Post("/build/builds", s.queueBuild)
			r.Get("/build/builds/{buildID}", s.getBuild)
			r.Get("/distributedtask/queues", s.getAgentQueues)
		})
	})
	s.server = httptest.NewServer(r)
	return s
}

func (s *FakeServer) Close() {
	s.server.Close()
}

// OrganizationURL returns the base URL to configure an APIClient with, in
// place of https://dev.azure.com/<organization>.
func (s *FakeServer) OrganizationURL(organization string) string {
	return s.server.URL + "/" + organization
}

// AddProject registers a project so GetProject and the definition and build
// endpoints recognize it.
func (s *FakeServer) AddProject(project *documents.TeamProject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[project.Name] = project
}

// AddAgentQueue registers an agent pool queue.
func (s *FakeServer) AddAgentQueue(queue *documents.AgentQueue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues = append(s.queues, queue)
}

// AddDefinition seeds an existing definition, returning its assigned ID.
func (s *FakeServer) AddDefinition(definition *documents.BuildDefinition) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	definition.ID = s.nextDefID
	s.nextDefID++
	s.definitions[definition.ID] = definition
	return definition.ID
}

// SetPageSize makes the definition list endpoint page its results, emitting
// continuation-token headers between pages.
func (s *FakeServer) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
}

// FailNext injects a failure into the next call of the named operation.
func (s *FakeServer) FailNext(operation string, statusCode int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[operation] = injectedFailure{
		statusCode: statusCode,
		doc: &documents.ErrorDocument{
			Message: message,
			TypeKey: "InjectedTestException",
		},
	}
}

// SetBuildState transitions a queued build's status and result, for tests
// that poll builds to completion.
func (s *FakeServer) SetBuildState(buildID int, status, result string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if build, ok := s.builds[buildID]; ok {
		build.Status = status
		build.Result = result
	}
}

// CreatedDefinitions returns every definition created through the API, in
// creation order.
func (s *FakeServer) CreatedDefinitions() []*documents.BuildDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	var defs []*documents.BuildDefinition
	for id := 1; id < s.nextDefID; id++ {
		if def, ok := s.definitions[id]; ok {
			defs = append(defs, def)
		}
	}
	return defs
}

// QueuedBuilds returns every build queued through the API, in queue order.
func (s *FakeServer) QueuedBuilds() []*documents.Build {
	s.mu.Lock()
	defer s.mu.Unlock()
	var builds []*documents.Build
	for id := 1; id < s.nextBuildID; id++ {
		if build, ok := s.builds[id]; ok {
			builds = append(builds, build)
		}
	}
	return builds
}

// Authorizations returns the Authorization header of every request received.
func (s *FakeServer) Authorizations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.authorization...)
}

// SessionIDs returns the X-TFS-Session header of every request received.
func (s *FakeServer) SessionIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sessionIDs...)
}

func (s *FakeServer) recordHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.authorization = append(s.authorization, r.Header.Get("Authorization"))
		s.sessionIDs = append(s.sessionIDs, r.Header.Get("X-TFS-Session"))
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// failInjected writes and clears any injected failure for the operation,
// returning true when one fired.
func (s *FakeServer) failInjected(w http.ResponseWriter, r *http.Request, operation string) bool {
	s.mu.Lock()
	failure, ok := s.failures[operation]
	if ok {
		delete(s.failures, operation)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	render.Status(r, failure.statusCode)
	render.JSON(w, r, failure.doc)
	return true
}

func (s *FakeServer) writeNotFound(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, &documents.ErrorDocument{
		Message: message,
		TypeKey: "ResourceNotFoundException",
	})
}

func (s *FakeServer) projectExists(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.projects[name]
	return ok
}

func (s *FakeServer) getProject(w http.ResponseWriter, r *http.Request) {
	if s.failInjected(w, r, OpGetProject) {
		return
	}
	name := chi.URLParam(r, "projectName")
	s.mu.Lock()
	project, ok := s.projects[name]
	s.mu.Unlock()
	if !ok {
		s.writeNotFound(w, r, fmt.Sprintf("The following project does not exist: %s.", name))
		return
	}
	render.JSON(w, r, project)
}

func (s *FakeServer) createDefinition(w http.ResponseWriter, r *http.Request) {
	if s.failInjected(w, r, OpCreateDefinition) {
		return
	}
	project := chi.URLParam(r, "project")
	if !s.projectExists(project) {
		s.writeNotFound(w, r, fmt.Sprintf("The following project does not exist: %s.", project))
		return
	}
	doc := &documents.BuildDefinition{}
	if err := json.NewDecoder(r.Body).Decode(doc); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, &documents.ErrorDocument{Message: err.Error(), TypeKey: "BuildRequestValidationFailedException"})
		return
	}
	s.mu.Lock()
	doc.ID = s.nextDefID
	s.nextDefID++
	doc.Revision = 1
	s.definitions[doc.ID] = doc
	s.mu.Unlock()
	render.JSON(w, r, doc)
}

func (s *FakeServer) getDefinition(w http.ResponseWriter, r *http.Request) {
	if s.failInjected(w, r, OpGetDefinition) {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "definitionID"))
	if err != nil {
		s.writeNotFound(w, r, "invalid definition id")
		return
	}
	s.mu.Lock()
	doc, ok := s.definitions[id]
	s.mu.Unlock()
	if !ok {
		s.writeNotFound(w, r, fmt.Sprintf("Definition %d does not exist.", id))
		return
	}
	render.JSON(w, r, doc)
}

func (s *FakeServer) deleteDefinition(w http.ResponseWriter, r *http.Request) {
	if s.failInjected(w, r, OpDeleteDefinition) {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "definitionID"))
	if err != nil {
		s.writeNotFound(w, r, "invalid definition id")
		return
	}
	s.mu.Lock()
	_, ok := s.definitions[id]
	if ok {
		delete(s.definitions, id)
	}
	s.mu.Unlock()
	if !ok {
		s.writeNotFound(w, r, fmt.Sprintf("Definition %d does not exist.", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *FakeServer) listDefinitions(w http.ResponseWriter, r *http.Request) {
	if s.failInjected(w, r, OpListDefinitions) {
		return
	}
	nameFilter := r.URL.Query().Get("name")

	s.mu.Lock()
	var all []*documents.BuildDefinition
	for id := 1; id < s.nextDefID; id++ {
		if def, ok := s.definitions[id]; ok {
			if nameFilter == "" || def.Name == nameFilter {
				all = append(all, def)
			}
		}
	}
	pageSize := s.pageSize
	s.mu.Unlock()

	offset := 0
	if token := r.URL.Query().Get("continuationToken"); token != "" {
		offset, _ = strconv.Atoi(token)
	}
	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}
	page := all[offset:end]
	if end < len(all) {
		w.Header().Set(continuationTokenHeader, strconv.Itoa(end))
	}
	render.JSON(w, r, &documents.BuildDefinitionList{Count: len(page), Value: page})
}

func (s *FakeServer) queueBuild(w http.ResponseWriter, r *http.Request) {
	if s.failInjected(w, r, OpQueueBuild) {
		return
	}
	project := chi.URLParam(r, "project")
	if !s.projectExists(project) {
		s.writeNotFound(w, r, fmt.Sprintf("The following project does not exist: %s.", project))
		return
	}
	doc := &documents.Build{}
	if err := json.NewDecoder(r.Body).Decode(doc); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, &documents.ErrorDocument{Message: err.Error(), TypeKey: "BuildRequestValidationFailedException"})
		return
	}
	s.mu.Lock()
	if doc.Definition == nil || s.definitions[doc.Definition.ID] == nil {
		s.mu.Unlock()
		s.writeNotFound(w, r, "The requested build definition does not exist.")
		return
	}
	doc.ID = s.nextBuildID
	s.nextBuildID++
	s.buildCounter++
	// The vendor's default build-number format is yyyymmdd.<revision>.
	doc.BuildNumber = fmt.Sprintf("%s.%d", time.Now().Format("20060102"), s.buildCounter)
	doc.Status = "notStarted"
	doc.Links = &documents.ReferenceLinks{
		Web: &documents.Link{Href: fmt.Sprintf("%s/%s/_build/results?buildId=%d", s.server.URL, project, doc.ID)},
	}
	s.builds[doc.ID] = doc
	s.mu.Unlock()
	render.JSON(w, r, doc)
}

func (s *FakeServer) getBuild(w http.ResponseWriter, r *http.Request) {
	if s.failInjected(w, r, OpGetBuild) {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "buildID"))
	if err != nil {
		s.writeNotFound(w, r, "invalid build id")
		return
	}
	s.mu.Lock()
	doc, ok := s.builds[id]
	s.mu.Unlock()
	if !ok {
		s.writeNotFound(w, r, fmt.Sprintf("Build %d does not exist.", id))
		return
	}
	render.JSON(w, r, doc)
}

func (s *FakeServer) getAgentQueues(w http.ResponseWriter, r *http.Request) {
	if s.failInjected(w, r, OpGetAgentQueues) {
		return
	}
	nameFilter := r.URL.Query().Get("queueName")
	s.mu.Lock()
	var matched []*documents.AgentQueue
	for _, queue := range s.queues {
		if nameFilter == "" || queue.Name == nameFilter {
			matched = append(matched, queue)
		}
	}
	s.mu.Unlock()
	render.JSON(w, r, &documents.AgentQueueList{Count: len(matched), Value: matched})
}
