package services

import (
	"time"

	"github.com/google/uuid"

	"gestion/models"
)

// SlideType identifica el tipo de lámina dentro del deck
type SlideType string

const (
	SlideTypeCover      SlideType = "cover"
	SlideTypeDepartment SlideType = "department"
	SlideTypeEmployees  SlideType = "employees"
	SlideTypeSummary    SlideType = "summary"
)

// empleados por lámina de área
const employeesPerSlide = 3

// FlatRow es una fila plana (departamento, área, empleado, meta, envío)
// tal como la devuelve la consulta de la presentación, ya ordenada por
// nombre de departamento, área y usuario
type FlatRow struct {
	DepartmentID    uuid.UUID
	DepartmentName  string
	AreaID          uuid.UUID
	AreaName        string
	UserID          uuid.UUID
	UserName        string
	UserImage       string
	GoalDescription string
	TargetValue     float64
	AchievedValue   float64
	Notes           string
	Status          string
}

// PresentationInfo son los datos de cabecera del deck
type PresentationInfo struct {
	Nombre    string
	Subtitulo string
	Fecha     time.Time
}

// EmployeeGoal es una meta dentro de la tarjeta de un empleado
type EmployeeGoal struct {
	Description string  `json:"description"`
	Target      float64 `json:"target"`
	Achieved    float64 `json:"achieved"`
	Percentage  float64 `json:"percentage"`
	Notes       string  `json:"notes,omitempty"`
	Status      string  `json:"status"`
}

// EmployeeCard es la tarjeta de un empleado con todas sus metas
type EmployeeCard struct {
	UserID   uuid.UUID      `json:"user_id"`
	UserName string         `json:"user_name"`
	Image    string         `json:"image,omitempty"`
	Goals    []EmployeeGoal `json:"goals"`
}

// Slide es una lámina del deck; según el tipo se llena una sola sección
type Slide struct {
	Type SlideType `json:"type"`

	// cover
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Date     string `json:"date,omitempty"`

	// department
	DepartmentName string `json:"department_name,omitempty"`

	// employees
	AreaName  string         `json:"area_name,omitempty"`
	Employees []EmployeeCard `json:"employees,omitempty"`

	// summary
	Summary *DeckSummary `json:"summary,omitempty"`
}

// DeckSummary son los agregados de cierre del deck
type DeckSummary struct {
	TotalGoals        int     `json:"total_goals"`
	CompletedGoals    int     `json:"completed_goals"`
	AveragePercentage float64 `json:"average_percentage"`
	Departments       int     `json:"departments"`
}

// agrupación intermedia que preserva el orden de primera aparición
type employeeGroup struct {
	id    uuid.UUID
	name  string
	image string
	goals []EmployeeGoal
}

type areaGroup struct {
	id        uuid.UUID
	name      string
	employees []*employeeGroup
	byUser    map[uuid.UUID]*employeeGroup
}

type departmentGroup struct {
	id     uuid.UUID
	name   string
	areas  []*areaGroup
	byArea map[uuid.UUID]*areaGroup
}

// ComposeSlides arma el deck: portada, una lámina por departamento, los
// empleados de cada área paginados de a 3 y el resumen final. No reordena:
// respeta el orden de primera aparición que trae la consulta (ORDER BY
// departamento, área, usuario). Función pura, sin I/O.
func ComposeSlides(p PresentationInfo, rows []FlatRow) []Slide {
	slides := []Slide{{
		Type:     SlideTypeCover,
		Title:    p.Nombre,
		Subtitle: p.Subtitulo,
		Date:     p.Fecha.Format("2006-01-02"),
	}}

	departments := groupRows(rows)

	totalGoals := 0
	completed := 0
	sumPercentage := 0.0

	for _, dept := range departments {
		slides = append(slides, Slide{
			Type:           SlideTypeDepartment,
			DepartmentName: dept.name,
		})

		for _, area := range dept.areas {
			for start := 0; start < len(area.employees); start += employeesPerSlide {
				end := start + employeesPerSlide
				if end > len(area.employees) {
					end = len(area.employees)
				}

				cards := make([]EmployeeCard, 0, end-start)
				for _, emp := range area.employees[start:end] {
					cards = append(cards, EmployeeCard{
						UserID:   emp.id,
						UserName: emp.name,
						Image:    emp.image,
						Goals:    emp.goals,
					})
				}

				slides = append(slides, Slide{
					Type:      SlideTypeEmployees,
					AreaName:  area.name,
					Employees: cards,
				})
			}
		}
	}

	for _, row := range rows {
		totalGoals++
		if row.Status == string(models.GoalStatusCompleted) {
			completed++
		}
		// target 0 aporta 0 al promedio
		if row.TargetValue > 0 {
			sumPercentage += row.AchievedValue / row.TargetValue * 100
		}
	}

	divisor := totalGoals
	if divisor == 0 {
		divisor = 1
	}

	slides = append(slides, Slide{
		Type: SlideTypeSummary,
		Summary: &DeckSummary{
			TotalGoals:        totalGoals,
			CompletedGoals:    completed,
			AveragePercentage: roundTo(sumPercentage/float64(divisor), 2),
			Departments:       len(departments),
		},
	})

	return slides
}

// groupRows agrupa las filas en departamento -> área -> empleado
// preservando el orden de inserción en cada nivel
func groupRows(rows []FlatRow) []*departmentGroup {
	var departments []*departmentGroup
	byDept := make(map[uuid.UUID]*departmentGroup)

	for _, row := range rows {
		dept, ok := byDept[row.DepartmentID]
		if !ok {
			dept = &departmentGroup{
				id:     row.DepartmentID,
				name:   row.DepartmentName,
				byArea: make(map[uuid.UUID]*areaGroup),
			}
			byDept[row.DepartmentID] = dept
			departments = append(departments, dept)
		}

		area, ok := dept.byArea[row.AreaID]
		if !ok {
			area = &areaGroup{
				id:     row.AreaID,
				name:   row.AreaName,
				byUser: make(map[uuid.UUID]*employeeGroup),
			}
			dept.byArea[row.AreaID] = area
			dept.areas = append(dept.areas, area)
		}

		emp, ok := area.byUser[row.UserID]
		if !ok {
			emp = &employeeGroup{
				id:    row.UserID,
				name:  row.UserName,
				image: row.UserImage,
			}
			area.byUser[row.UserID] = emp
			area.employees = append(area.employees, emp)
		}

		emp.goals = append(emp.goals, EmployeeGoal{
			Description: row.GoalDescription,
			Target:      row.TargetValue,
			Achieved:    row.AchievedValue,
			// Las tarjetas muestran porcentaje entero; el semáforo de
			// avance usa 2 decimales. Misma fórmula, precisión distinta.
			Percentage: Percentage(row.AchievedValue, row.TargetValue, 0),
			Notes:      row.Notes,
			Status:     row.Status,
		})
	}

	return departments
}
