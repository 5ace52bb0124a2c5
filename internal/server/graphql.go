package server

import (
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"

	"paperdesk/internal/app"
	"paperdesk/pkg/domain"
)

var roleEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "UserRole",
	Values: graphql.EnumValueConfigMap{
		"STUDENT": {Value: string(domain.RoleStudent)},
		"WRITER":  {Value: string(domain.RoleWriter)},
		"QA":      {Value: string(domain.RoleQA)},
		"ADMIN":   {Value: string(domain.RoleAdmin)},
	},
})

var orderStatusEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "OrderStatus",
	Values: graphql.EnumValueConfigMap{
		"PENDING":     {Value: string(domain.OrderPending)},
		"IN_PROGRESS": {Value: string(domain.OrderInProgress)},
		"COMPLETED":   {Value: string(domain.OrderCompleted)},
		"REVIEWED":    {Value: string(domain.OrderReviewed)},
	},
})

var paymentStatusEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "PaymentStatus",
	Values: graphql.EnumValueConfigMap{
		"PENDING":   {Value: string(domain.PaymentPending)},
		"COMPLETED": {Value: string(domain.PaymentCompleted)},
		"FAILED":    {Value: string(domain.PaymentFailed)},
	},
})

var assignmentStatusEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "AssignmentStatus",
	Values: graphql.EnumValueConfigMap{
		"PENDING":     {Value: string(domain.AssignmentPending)},
		"IN_PROGRESS": {Value: string(domain.AssignmentInProgress)},
		"COMPLETED":   {Value: string(domain.AssignmentCompleted)},
	},
})

// enumField adapts a typed-string domain field to an enum output. The
// default resolver matches json tags but hands the serializer the
// typed value, which misses the enum's value lookup; returning a plain
// string keeps serialization exact.
func enumField[T any](get func(T) string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		switch v := p.Source.(type) {
		case T:
			return get(v), nil
		case *T:
			return get(*v), nil
		}
		return nil, nil
	}
}

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id":        {Type: graphql.NewNonNull(graphql.ID)},
		"email":     {Type: graphql.NewNonNull(graphql.String)},
		"firstName": {Type: graphql.String},
		"lastName":  {Type: graphql.String},
		"role": {
			Type:    graphql.NewNonNull(roleEnum),
			Resolve: enumField(func(u domain.User) string { return string(u.Role) }),
		},
		"createdAt": {Type: graphql.DateTime},
		"updatedAt": {Type: graphql.DateTime},
	},
})

var uploadedFileType = graphql.NewObject(graphql.ObjectConfig{
	Name: "UploadedFile",
	Fields: graphql.Fields{
		"id":        {Type: graphql.NewNonNull(graphql.ID)},
		"orderId":   {Type: graphql.NewNonNull(graphql.ID)},
		"url":       {Type: graphql.NewNonNull(graphql.String)},
		"name":      {Type: graphql.String},
		"size":      {Type: graphql.Int},
		"mimeType":  {Type: graphql.String},
		"createdAt": {Type: graphql.DateTime},
	},
})

var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"id":            {Type: graphql.NewNonNull(graphql.ID)},
		"studentId":     {Type: graphql.NewNonNull(graphql.ID)},
		"paperType":     {Type: graphql.NewNonNull(graphql.String)},
		"numberOfPages": {Type: graphql.NewNonNull(graphql.Int)},
		"dueDate":       {Type: graphql.String},
		"totalAmount":   {Type: graphql.NewNonNull(graphql.Float)},
		"depositAmount": {Type: graphql.NewNonNull(graphql.Float)},
		"status": {
			Type:    graphql.NewNonNull(orderStatusEnum),
			Resolve: enumField(func(o domain.Order) string { return string(o.Status) }),
		},
		"uploadedFiles": {Type: graphql.NewList(uploadedFileType)},
		"createdAt":     {Type: graphql.DateTime},
		"updatedAt":     {Type: graphql.DateTime},
	},
})

var paymentType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Payment",
	Fields: graphql.Fields{
		"id":            {Type: graphql.NewNonNull(graphql.ID)},
		"orderId":       {Type: graphql.NewNonNull(graphql.ID)},
		"amount": {Type: graphql.NewNonNull(graphql.Float)},
		"paymentStatus": {
			Type:    graphql.NewNonNull(paymentStatusEnum),
			Resolve: enumField(func(p domain.Payment) string { return string(p.PaymentStatus) }),
		},
		"transactionId": {Type: graphql.String},
		"createdAt":     {Type: graphql.DateTime},
		"updatedAt":     {Type: graphql.DateTime},
	},
})

var assignmentType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Assignment",
	Fields: graphql.Fields{
		"id":       {Type: graphql.NewNonNull(graphql.ID)},
		"orderId":  {Type: graphql.NewNonNull(graphql.ID)},
		"writerId": {Type: graphql.NewNonNull(graphql.ID)},
		"status": {
			Type:    graphql.NewNonNull(assignmentStatusEnum),
			Resolve: enumField(func(a domain.Assignment) string { return string(a.Status) }),
		},
		"createdAt": {Type: graphql.DateTime},
		"updatedAt": {Type: graphql.DateTime},
	},
})

var reviewType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Review",
	Fields: graphql.Fields{
		"id":        {Type: graphql.NewNonNull(graphql.ID)},
		"orderId":   {Type: graphql.NewNonNull(graphql.ID)},
		"qaId":      {Type: graphql.NewNonNull(graphql.ID)},
		"writerId":  {Type: graphql.NewNonNull(graphql.ID)},
		"rating":    {Type: graphql.NewNonNull(graphql.Int)},
		"comments":  {Type: graphql.String},
		"status":    {Type: graphql.String},
		"createdAt": {Type: graphql.DateTime},
		"updatedAt": {Type: graphql.DateTime},
	},
})

var authPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuthPayload",
	Fields: graphql.Fields{
		"token": {Type: graphql.NewNonNull(graphql.String)},
		"user":  {Type: graphql.NewNonNull(userType)},
	},
})

var createOrderResponseType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CreateOrderResponse",
	Fields: graphql.Fields{
		"success": {Type: graphql.NewNonNull(graphql.Boolean)},
		"message": {Type: graphql.String},
		"order":   {Type: orderType},
	},
})

var registerResponseType = graphql.NewObject(graphql.ObjectConfig{
	Name: "RegisterResponse",
	Fields: graphql.Fields{
		"success":           {Type: graphql.NewNonNull(graphql.Boolean)},
		"message":           {Type: graphql.String},
		"verificationToken": {Type: graphql.String},
	},
})

var verifyResponseType = graphql.NewObject(graphql.ObjectConfig{
	Name: "VerifyEmailResponse",
	Fields: graphql.Fields{
		"valid":       {Type: graphql.NewNonNull(graphql.Boolean)},
		"message":     {Type: graphql.String},
		"redirectUrl": {Type: graphql.String},
		"token":       {Type: graphql.String},
	},
})

var completeResponseType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CompleteRegistrationResponse",
	Fields: graphql.Fields{
		"valid":   {Type: graphql.NewNonNull(graphql.Boolean)},
		"message": {Type: graphql.String},
	},
})

var uploadedFileInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "UploadedFileInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"url":      {Type: graphql.NewNonNull(graphql.String)},
		"name":     {Type: graphql.NewNonNull(graphql.String)},
		"size":     {Type: graphql.Int},
		"mimeType": {Type: graphql.String},
	},
})

type registerResponse struct {
	Success           bool    `json:"success"`
	Message           string  `json:"message"`
	VerificationToken *string `json:"verificationToken"`
}

type verifyResponse struct {
	Valid       bool   `json:"valid"`
	Message     string `json:"message"`
	RedirectURL string `json:"redirectUrl"`
	Token       string `json:"token"`
}

type completeResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type createOrderResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Order   *domain.Order `json:"order"`
}

type authPayload struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func stringArg(p graphql.ResolveParams, name string) string {
	v, _ := p.Args[name].(string)
	return v
}

func intArg(p graphql.ResolveParams, name string) int {
	v, _ := p.Args[name].(int)
	return v
}

func optString(p graphql.ResolveParams, name string) *string {
	if v, ok := p.Args[name].(string); ok {
		return &v
	}
	return nil
}

func optInt(p graphql.ResolveParams, name string) *int {
	if v, ok := p.Args[name].(int); ok {
		return &v
	}
	return nil
}

func optFloat(p graphql.ResolveParams, name string) *float64 {
	if v, ok := p.Args[name].(float64); ok {
		return &v
	}
	return nil
}

func (s *Server) buildSchema() (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": {
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.Me(actorFromContext(p.Context))
				},
			},
			"user": {
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"id": {Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.GetUser(actorFromContext(p.Context), stringArg(p, "id"))
				},
			},
			"users": {
				Type: graphql.NewList(userType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.ListUsers(actorFromContext(p.Context))
				},
			},
			"order": {
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"id": {Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.GetOrder(actorFromContext(p.Context), stringArg(p, "id"))
				},
			},
			"orders": {
				Type: graphql.NewList(orderType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.ListOrders(actorFromContext(p.Context))
				},
			},
			"payment": {
				Type: paymentType,
				Args: graphql.FieldConfigArgument{
					"id": {Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.GetPayment(actorFromContext(p.Context), stringArg(p, "id"))
				},
			},
			"payments": {
				Type: graphql.NewList(paymentType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.ListPayments(actorFromContext(p.Context))
				},
			},
			"paymentsByOrder": {
				Type: graphql.NewList(paymentType),
				Args: graphql.FieldConfigArgument{
					"orderId": {Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.ListPaymentsByOrder(actorFromContext(p.Context), stringArg(p, "orderId"))
				},
			},
			"paymentByTransaction": {
				Type: paymentType,
				Args: graphql.FieldConfigArgument{
					"transactionId": {Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.GetPaymentByTransaction(actorFromContext(p.Context), stringArg(p, "transactionId"))
				},
			},
			"assignmentsByOrder": {
				Type: graphql.NewList(assignmentType),
				Args: graphql.FieldConfigArgument{
					"orderId": {Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.AssignmentsByOrder(actorFromContext(p.Context), stringArg(p, "orderId"))
				},
			},
			"assignmentsByWriter": {
				Type: graphql.NewList(assignmentType),
				Args: graphql.FieldConfigArgument{
					"writerId": {Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.AssignmentsByWriter(actorFromContext(p.Context), stringArg(p, "writerId"))
				},
			},
			"reviewsByUser": {
				Type: graphql.NewList(reviewType),
				Args: graphql.FieldConfigArgument{
					"userId": {Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.ReviewsByUser(actorFromContext(p.Context), stringArg(p, "userId"))
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createUser": {
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"email":     {Type: graphql.NewNonNull(graphql.String)},
					"password":  {Type: graphql.NewNonNull(graphql.String)},
					"firstName": {Type: graphql.String},
					"lastName":  {Type: graphql.String},
					"role":      {Type: roleEnum},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var role domain.UserRole
					if v, ok := p.Args["role"].(string); ok {
						role = domain.UserRole(v)
					}
					return s.app.CreateUser(actorFromContext(p.Context), app.CreateUserInput{
						Email:     stringArg(p, "email"),
						Password:  stringArg(p, "password"),
						FirstName: stringArg(p, "firstName"),
						LastName:  stringArg(p, "lastName"),
						Role:      role,
					})
				},
			},
			"login": {
				Type: authPayloadType,
				Args: graphql.FieldConfigArgument{
					"email":    {Type: graphql.NewNonNull(graphql.String)},
					"password": {Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if !s.allow(s.loginLimiter, p) {
						return nil, app.E(app.KindValidation, "Too many login attempts. Please try again later.")
					}
					user, token, err := s.app.Login(stringArg(p, "email"), stringArg(p, "password"))
					if err != nil {
						return nil, err
					}
					return authPayload{Token: token, User: user}, nil
				},
			},
			"updateUser": {
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"id":        {Type: graphql.NewNonNull(graphql.ID)},
					"firstName": {Type: graphql.String},
					"lastName":  {Type: graphql.String},
					"role":      {Type: roleEnum},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var role *domain.UserRole
					if v, ok := p.Args["role"].(string); ok {
						parsed := domain.UserRole(v)
						role = &parsed
					}
					return s.app.UpdateUser(actorFromContext(p.Context), stringArg(p, "id"), app.UpdateUserInput{
						FirstName: optString(p, "firstName"),
						LastName:  optString(p, "lastName"),
						Role:      role,
					})
				},
			},
			"deleteUser": {
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id": {Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.DeleteUser(actorFromContext(p.Context), stringArg(p, "id"))
				},
			},
			"createOrder": {
				Type: createOrderResponseType,
				Args: graphql.FieldConfigArgument{
					"studentId":     {Type: graphql.NewNonNull(graphql.ID)},
					"paperType":     {Type: graphql.NewNonNull(graphql.String)},
					"numberOfPages": {Type: graphql.NewNonNull(graphql.Int)},
					"dueDate":       {Type: graphql.String},
					"uploadedFiles": {Type: graphql.NewList(uploadedFileInputType)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					in := app.CreateOrderInput{
						StudentID:     stringArg(p, "studentId"),
						PaperType:     stringArg(p, "paperType"),
						NumberOfPages: intArg(p, "numberOfPages"),
						DueDate:       stringArg(p, "dueDate"),
					}
					if raw, ok := p.Args["uploadedFiles"].([]interface{}); ok {
						for _, item := range raw {
							m, ok := item.(map[string]interface{})
							if !ok {
								continue
							}
							f := app.UploadedFileInput{}
							f.URL, _ = m["url"].(string)
							f.Name, _ = m["name"].(string)
							if size, ok := m["size"].(int); ok {
								f.Size = int64(size)
							}
							f.MimeType, _ = m["mimeType"].(string)
							in.Files = append(in.Files, f)
						}
					}
					res, err := s.app.CreateOrder(p.Context, actorFromContext(p.Context), in)
					if err != nil {
						return nil, err
					}
					return createOrderResponse{Success: res.Success, Message: res.Message, Order: res.Order}, nil
				},
			},
			"updateOrder": {
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"id":            {Type: graphql.NewNonNull(graphql.ID)},
					"paperType":     {Type: graphql.String},
					"numberOfPages": {Type: graphql.Int},
					"dueDate":       {Type: graphql.String},
					"status":        {Type: orderStatusEnum},
					"totalAmount":   {Type: graphql.Float},
					"depositAmount": {Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var status *domain.OrderStatus
					if v, ok := p.Args["status"].(string); ok {
						parsed := domain.OrderStatus(v)
						status = &parsed
					}
					return s.app.UpdateOrder(actorFromContext(p.Context), stringArg(p, "id"), app.UpdateOrderInput{
						PaperType:     optString(p, "paperType"),
						NumberOfPages: optInt(p, "numberOfPages"),
						DueDate:       optString(p, "dueDate"),
						Status:        status,
						TotalAmount:   optFloat(p, "totalAmount"),
						DepositAmount: optFloat(p, "depositAmount"),
					})
				},
			},
			"deleteOrder": {
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id": {Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.DeleteOrder(actorFromContext(p.Context), stringArg(p, "id"))
				},
			},
			"createPayment": {
				Type: paymentType,
				Args: graphql.FieldConfigArgument{
					"orderId": {Type: graphql.NewNonNull(graphql.ID)},
					"amount":  {Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					amount, _ := p.Args["amount"].(float64)
					return s.app.CreatePayment(actorFromContext(p.Context), app.CreatePaymentInput{
						OrderID: stringArg(p, "orderId"),
						Amount:  amount,
					})
				},
			},
			"updatePayment": {
				Type: paymentType,
				Args: graphql.FieldConfigArgument{
					"id":            {Type: graphql.NewNonNull(graphql.ID)},
					"paymentStatus": {Type: paymentStatusEnum},
					"amount":        {Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var status *domain.PaymentStatus
					if v, ok := p.Args["paymentStatus"].(string); ok {
						parsed := domain.PaymentStatus(v)
						status = &parsed
					}
					return s.app.UpdatePayment(actorFromContext(p.Context), stringArg(p, "id"), app.UpdatePaymentInput{
						PaymentStatus: status,
						Amount:        optFloat(p, "amount"),
					})
				},
			},
			"deletePayment": {
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id": {Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.DeletePayment(actorFromContext(p.Context), stringArg(p, "id"))
				},
			},
			"createAssignment": {
				Type: assignmentType,
				Args: graphql.FieldConfigArgument{
					"orderId":  {Type: graphql.NewNonNull(graphql.ID)},
					"writerId": {Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.CreateAssignment(actorFromContext(p.Context), app.CreateAssignmentInput{
						OrderID:  stringArg(p, "orderId"),
						WriterID: stringArg(p, "writerId"),
					})
				},
			},
			"updateAssignment": {
				Type: assignmentType,
				Args: graphql.FieldConfigArgument{
					"id":     {Type: graphql.NewNonNull(graphql.ID)},
					"status": {Type: graphql.NewNonNull(assignmentStatusEnum)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					status := domain.AssignmentStatus(stringArg(p, "status"))
					return s.app.UpdateAssignment(actorFromContext(p.Context), stringArg(p, "id"), status)
				},
			},
			"deleteAssignment": {
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id": {Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.DeleteAssignment(actorFromContext(p.Context), stringArg(p, "id"))
				},
			},
			"createReview": {
				Type: reviewType,
				Args: graphql.FieldConfigArgument{
					"orderId":  {Type: graphql.NewNonNull(graphql.ID)},
					"writerId": {Type: graphql.NewNonNull(graphql.ID)},
					"rating":   {Type: graphql.NewNonNull(graphql.Int)},
					"comments": {Type: graphql.String},
					"status":   {Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.CreateReview(actorFromContext(p.Context), app.CreateReviewInput{
						OrderID:  stringArg(p, "orderId"),
						WriterID: stringArg(p, "writerId"),
						Rating:   intArg(p, "rating"),
						Comments: stringArg(p, "comments"),
						Status:   stringArg(p, "status"),
					})
				},
			},
			"updateReview": {
				Type: reviewType,
				Args: graphql.FieldConfigArgument{
					"id":       {Type: graphql.NewNonNull(graphql.ID)},
					"rating":   {Type: graphql.Int},
					"comments": {Type: graphql.String},
					"status":   {Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.UpdateReview(actorFromContext(p.Context), stringArg(p, "id"), app.UpdateReviewInput{
						Rating:   optInt(p, "rating"),
						Comments: optString(p, "comments"),
						Status:   optString(p, "status"),
					})
				},
			},
			"deleteReview": {
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id": {Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.app.DeleteReview(actorFromContext(p.Context), stringArg(p, "id"))
				},
			},
			"registerAndCreateOrder": {
				Type: registerResponseType,
				Args: graphql.FieldConfigArgument{
					"email":         {Type: graphql.NewNonNull(graphql.String)},
					"paperType":     {Type: graphql.NewNonNull(graphql.String)},
					"numberOfPages": {Type: graphql.NewNonNull(graphql.Int)},
					"dueDate":       {Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if !s.allow(s.registerLimiter, p) {
						return registerResponse{Success: false, Message: "Too many registration attempts. Please try again later."}, nil
					}
					res, err := s.app.RegisterAndCreateOrder(p.Context, app.RegisterInput{
						Email:         stringArg(p, "email"),
						PaperType:     stringArg(p, "paperType"),
						NumberOfPages: intArg(p, "numberOfPages"),
						DueDate:       stringArg(p, "dueDate"),
					})
					if err != nil {
						return nil, err
					}
					return registerResponse{Success: res.Success, Message: res.Message, VerificationToken: res.VerificationToken}, nil
				},
			},
			"verifyEmail": {
				Type: verifyResponseType,
				Args: graphql.FieldConfigArgument{
					"token": {Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					res, err := s.app.VerifyEmail(stringArg(p, "token"))
					if err != nil {
						return nil, err
					}
					return verifyResponse{Valid: res.Valid, Message: res.Message, RedirectURL: res.RedirectURL, Token: res.Token}, nil
				},
			},
			"completeRegistration": {
				Type: completeResponseType,
				Args: graphql.FieldConfigArgument{
					"token": {Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					res, err := s.app.CompleteRegistration(p.Context, stringArg(p, "token"))
					if err != nil {
						return nil, err
					}
					return completeResponse{Valid: res.Valid, Message: res.Message}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}

func (s *Server) allow(l Limiter, p graphql.ResolveParams) bool {
	if l == nil {
		return true
	}
	return l.Allow(clientIPFromContext(p.Context))
}

func (s *Server) graphqlHandler() http.Handler {
	schema, err := s.buildSchema()
	if err != nil {
		// Schema construction only fails on programmer error.
		panic(err)
	}
	return handler.New(&handler.Config{
		Schema:   &schema,
		Pretty:   true,
		GraphiQL: true,
	})
}
