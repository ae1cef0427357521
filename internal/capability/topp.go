package capability

import "strconv"

// TOPP returns a fresh copy of the built-in TOPP model: technical,
// operational, political and prospective planning capabilities.
// Element names are in Spanish, the instrument's working language.
func TOPP() *Model {
	return &Model{
		ID:          TOPPModelID,
		Name:        "Planbarómetro TOPP",
		Description: "Capacidades técnicas, operativas, políticas y prospectivas de la planificación para el desarrollo",
		Dimensions: []Dimension{
			{
				ID:   Technical,
				Name: "Capacidades técnicas",
				Criteria: []Criterion{
					criterion("T.1", "Diagnóstico e información", 1,
						"Sistemas de información estadística actualizados",
						"Diagnósticos territoriales basados en evidencia",
						"Indicadores de línea base definidos",
					),
					criterion("T.2", "Formulación de planes", 1,
						"Metodología de planificación documentada",
						"Objetivos y metas cuantificables",
						"Articulación entre plan y presupuesto",
					),
					criterion("T.3", "Seguimiento y evaluación", 1,
						"Sistema de monitoreo de metas",
						"Evaluaciones periódicas de resultados",
						"Uso de resultados para ajustar los planes",
					),
				},
			},
			{
				ID:   Operational,
				Name: "Capacidades operativas",
				Criteria: []Criterion{
					criterion("O.1", "Organización institucional", 1,
						"Unidad de planificación con mandato formal",
						"Personal calificado suficiente",
						"Procesos y procedimientos estandarizados",
					),
					criterion("O.2", "Gestión de recursos", 1,
						"Presupuesto asignado a la función de planificación",
						"Infraestructura tecnológica adecuada",
						"Programación plurianual de inversiones",
					),
					criterion("O.3", "Coordinación", 1,
						"Mecanismos de coordinación intersectorial",
						"Coordinación entre niveles de gobierno",
						"Gestión de proyectos con cronogramas",
					),
				},
			},
			{
				ID:   Political,
				Name: "Capacidades políticas",
				Criteria: []Criterion{
					criterion("P.1", "Liderazgo y respaldo", 1,
						"Respaldo explícito de la máxima autoridad",
						"Plan aprobado por la instancia política competente",
						"Prioridades de gobierno reflejadas en el plan",
					),
					criterion("P.2", "Participación y concertación", 1,
						"Espacios de participación ciudadana",
						"Acuerdos con actores sociales y privados",
						"Concertación con el poder legislativo",
					),
					criterion("P.3", "Transparencia y rendición de cuentas", 1,
						"Publicación de los avances del plan",
						"Rendición de cuentas periódica",
					),
				},
			},
			{
				ID:   Prospective,
				Name: "Capacidades prospectivas",
				Criteria: []Criterion{
					criterion("F.1", "Visión de largo plazo", 1,
						"Visión de desarrollo a más de diez años",
						"Escenarios futuros construidos",
						"Alineación con agendas globales de desarrollo",
					),
					criterion("F.2", "Anticipación y gestión de riesgos", 1,
						"Análisis de tendencias y megatendencias",
						"Sistemas de alerta temprana",
						"Gestión de riesgos estratégicos",
					),
					criterion("F.3", "Aprendizaje e innovación", 1,
						"Ejercicios prospectivos participativos",
						"Redes de conocimiento y cooperación",
					),
				},
			},
		},
	}
}

// criterion builds a Criterion whose element ids are derived from the
// criterion id: "T.1" → "T.1.1", "T.1.2", ...
func criterion(id, name string, weight int, elements ...string) Criterion {
	c := Criterion{ID: id, Name: name, Weight: weight, Elements: make([]Element, len(elements))}
	for i, n := range elements {
		c.Elements[i] = Element{ID: id + "." + strconv.Itoa(i+1), Name: n}
	}
	return c
}
