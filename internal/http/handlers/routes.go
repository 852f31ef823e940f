// Package handlers wires the resource handlers onto a ServeMux.
package handlers

import (
	"net/http"

	"github.com/aanand-mishra/student-records-api/internal/http/handlers/lecture"
	"github.com/aanand-mishra/student-records-api/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records-api/internal/storage"
)

// Router returns the route table:
//
//	POST   /students          create a student (with nested lectures)
//	GET    /students          list all students
//	GET    /students/export   download all students as .xlsx
//	GET    /students/{id}     get one student with its lectures
//	PUT    /students/{id}     patch a student and upsert nested lectures
//	DELETE /students/{id}     delete a student and its lectures
//	POST   /lectures          create a lecture for an existing student
//	GET    /lectures/{id}     get one lecture
func Router(store storage.Storage) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("POST /students", student.New(store))
	router.HandleFunc("GET /students", student.GetList(store))
	router.HandleFunc("GET /students/export", student.Export(store))
	router.HandleFunc("GET /students/{id}", student.GetByID(store))
	router.HandleFunc("PUT /students/{id}", student.Update(store))
	router.HandleFunc("DELETE /students/{id}", student.Delete(store))

	router.HandleFunc("POST /lectures", lecture.New(store))
	router.HandleFunc("GET /lectures/{id}", lecture.GetByID(store))

	return router
}
