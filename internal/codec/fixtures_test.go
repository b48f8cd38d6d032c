package codec

import (
	"time"

	"github.com/noah-isme/sma-course-api/internal/models"
)

func newTestCodec() *Codec {
	return New(DateFormat{Layout: DefaultDateLayout, Location: time.UTC})
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func bakerStreet() models.Address {
	return models.Address{BuildingNumber: "221-B", Street: "Baker Street", City: "London", State: "UK", ZipCode: "188000"}
}

func room2E() models.Location {
	return models.Location{RoomNumber: "2E", BuildingName: "1019", Address: bakerStreet()}
}

func sherlock(id int, gpa float64) models.Student {
	return models.Student{
		ID:             id,
		FirstName:      "Sherlock",
		LastName:       "Holmes",
		OverallGPA:     gpa,
		EmailAddress:   "sherlock.holmes@bakerstreet.com",
		MailingAddress: bakerStreet(),
	}
}

func courseInfo(id int) models.CourseInfo {
	return models.CourseInfo{
		ID:           id,
		Name:         "MATH101",
		StartDate:    date(2019, time.April, 20),
		EndDate:      date(2019, time.May, 20),
		MeetingDays:  "T TH",
		MeetingTimes: "6:00PM - 6:30PM",
		TermCode:     "FL2019",
	}
}

func withRoster(info models.CourseInfo) models.CourseInfo {
	info.Students = []models.Student{sherlock(1, 4.0), sherlock(2, 3.0)}
	info.Gradebook.Set(2, 3.0)
	info.Gradebook.Set(1, 4.0)
	return info
}

const sherlockRecord = "<student><id>1</id><firstname>Sherlock</firstname><lastname>Holmes</lastname><overallgpa>4.0</overallgpa>" +
	"<emailaddress>sherlock.holmes@bakerstreet.com</emailaddress><mailingaddress><address><buildingnumber>221-B</buildingnumber>" +
	"<street>Baker Street</street><city>London</city><state>UK</state><zipcode>188000</zipcode></address></mailingaddress></student>"

const room2ERecord = "<location><roomnumber>2E</roomnumber><buildingname>1019</buildingname><address><buildingnumber>221-B</buildingnumber>" +
	"<street>Baker Street</street><city>London</city><state>UK</state><zipcode>188000</zipcode></address></location>"

const onlineTermDocument = "<term><termcode>FL2019</termcode><courses><onlinecourse>\n" +
	"<id>1</id><termcode>FL2019</termcode><name>MATH101</name><startdate>04/20/2019</startdate><enddate>05/20/2019</enddate>" +
	"<meetingdays>T TH</meetingdays><meetingtimes>6:00PM - 6:30PM</meetingtimes>\n" +
	"<url>https://x</url>\n" +
	"<students>\n" +
	sherlockRecord + "\n" +
	"</students>\n" +
	"<gradebook>\n" +
	"<grade><studentid>1</studentid><gpa>3.5</gpa></grade>\n" +
	"</gradebook>\n" +
	"</onlinecourse></courses></term>"

func gradeOf(id int, gpa float64) models.Grade {
	return models.Grade{StudentID: id, GPA: gpa}
}
